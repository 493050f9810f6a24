// Package domain contains entity without logic, just meta-data
package domain

import "errors"

const MaxNameLen = 64

var (
	ErrNameEmpty   = errors.New("name empty")
	ErrNameTooLong = errors.New("name too long")
	ErrBadRole     = errors.New("unknown role")
)

type Role string

const (
	RoleStudent  Role = "student"
	RoleLecturer Role = "lecturer"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleStudent, RoleLecturer:
		return Role(s), nil
	}
	return "", ErrBadRole
}

type UserID string

type User struct {
	ID      UserID   `json:"id"`
	Name    string   `json:"name"`
	Role    Role     `json:"role"`
	Modules []string `json:"modules,omitempty"`
}

func (u *User) SetName(name string) error {
	if len(name) == 0 {
		return ErrNameEmpty
	}
	if len(name) > MaxNameLen {
		return ErrNameTooLong
	}
	u.Name = name
	return nil
}
