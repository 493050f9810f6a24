package app

import (
	"context"
	"testing"

	"lecturehall/internal/core"
	"lecturehall/internal/domain"
)

func TestPublisherKicksSlowConsumer(t *testing.T) {
	reg := NewRegistry()
	pub := NewPublisher(reg, SimplePolicy{})

	canceled := false
	slow := &fakeConn{fail: true}
	u := reg.GetOrCreateUser("slow")
	sess := core.NewMemberSession(domain.NewParticipant(u, domain.RoleStudent), slow)
	reg.BindSignal("slow", sess, func() { canceled = true })

	ok := &fakeConn{}
	u2 := reg.GetOrCreateUser("ok")
	sess2 := core.NewMemberSession(domain.NewParticipant(u2, domain.RoleStudent), ok)
	reg.BindSignal("ok", sess2, nil)

	pub.BroadcastAll(map[string]any{"type": "ping"})

	if !canceled {
		t.Error("slow consumer was not canceled")
	}
	if got := ok.events(t, "ping"); len(got) != 1 {
		t.Errorf("healthy consumer events = %d, want 1", len(got))
	}
}

func TestPublisherNilPolicyDropsQuietly(t *testing.T) {
	reg := NewRegistry()
	pub := NewPublisher(reg, nil)

	canceled := false
	slow := &fakeConn{fail: true}
	u := reg.GetOrCreateUser("slow")
	reg.BindSignal("slow", core.NewMemberSession(domain.NewParticipant(u, domain.RoleStudent), slow), func() { canceled = true })

	pub.BroadcastAll(map[string]any{"type": "ping"})
	if canceled {
		t.Error("nil policy must not cancel sessions")
	}
}

func TestRegistryLifecycle(t *testing.T) {
	reg := NewRegistry()

	u := reg.GetOrCreateUser("c1")
	if u.Name != "guest" || u.Role != domain.RoleStudent {
		t.Errorf("default user = %+v", u)
	}
	if again := reg.GetOrCreateUser("c1"); again != u {
		t.Error("GetOrCreateUser did not return the same user")
	}

	if err := reg.SetIdentity("c1", "alice", domain.RoleLecturer, []string{"CS2850"}); err != nil {
		t.Fatalf("SetIdentity: %v", err)
	}
	if u.Name != "alice" || u.Role != domain.RoleLecturer {
		t.Errorf("identity not applied in place: %+v", u)
	}

	conn := &fakeConn{}
	sess := core.NewMemberSession(domain.NewParticipant(u, u.Role), conn)
	_, cancel := context.WithCancel(context.Background())
	reg.BindSignal("c1", sess, cancel)

	if !reg.UpdateLecture("c1", "3") {
		t.Fatal("UpdateLecture returned false for bound session")
	}
	key, _, ok := reg.LectureOf("c1")
	if !ok || key != "3" {
		t.Errorf("LectureOf = %q, %v", key, ok)
	}
	if members := reg.MembersOfLecture("3"); len(members) != 1 {
		t.Errorf("MembersOfLecture = %d, want 1", len(members))
	}

	reg.RemoveLecture("c1")
	if _, _, ok := reg.LectureOf("c1"); ok {
		t.Error("LectureOf still set after RemoveLecture")
	}

	reg.Unbind("c1")
	if _, ok := reg.GetSession("c1"); ok {
		t.Error("session still present after Unbind")
	}
	if reg.UpdateLecture("c1", "4") {
		t.Error("UpdateLecture succeeded for unbound session")
	}
}
