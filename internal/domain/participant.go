package domain

// Participant represents user's membership meta for a lecture roster.
// No transport or lifecycle logic here.
type Participant struct {
	User *User
	Role Role
}

// NewParticipant avoids raw literals in adapters and keeps construction obvious.
func NewParticipant(user *User, role Role) *Participant {
	return &Participant{User: user, Role: role}
}

func (p *Participant) IsLecturer() bool { return p.Role == RoleLecturer }
