package domain

import (
	"strings"
	"testing"
)

func TestSetName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr error
	}{
		{name: "ok", in: "alice"},
		{name: "empty", in: "", wantErr: ErrNameEmpty},
		{name: "too long", in: strings.Repeat("a", MaxNameLen+1), wantErr: ErrNameTooLong},
		{name: "at limit", in: strings.Repeat("a", MaxNameLen)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{ID: "u-1", Name: "guest", Role: RoleStudent}
			err := u.SetName(tt.in)
			if err != tt.wantErr {
				t.Fatalf("SetName(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err != nil && u.Name != "guest" {
				t.Errorf("failed SetName mutated name to %q", u.Name)
			}
			if err == nil && u.Name != tt.in {
				t.Errorf("Name = %q, want %q", u.Name, tt.in)
			}
		})
	}
}

func TestParticipantIsLecturer(t *testing.T) {
	u := &User{ID: "u-1", Name: "dr. alwash", Role: RoleLecturer}
	if !NewParticipant(u, RoleLecturer).IsLecturer() {
		t.Error("IsLecturer() = false for lecturer role")
	}
	if NewParticipant(u, RoleStudent).IsLecturer() {
		t.Error("IsLecturer() = true for student role")
	}
}
