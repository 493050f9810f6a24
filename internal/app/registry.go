package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"lecturehall/internal/core"
	"lecturehall/internal/domain"
)

type sessionEntry struct {
	Lecture domain.BuildingKey
	Session core.MemberSession
	Cancel  context.CancelFunc
}

// Registry tracks every live connection: its transport session, the
// user behind it, and the lecture it is currently joined to (if any).
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
	users    map[core.SessionID]*domain.User
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
		users:    make(map[core.SessionID]*domain.User),
	}
}

func (r *Registry) GetOrCreateUser(sid core.SessionID) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[sid]; ok {
		return u
	}
	u := &domain.User{ID: domain.UserID(sid), Name: "guest", Role: domain.RoleStudent}
	r.users[sid] = u
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("created new user")
	return u
}

// SetIdentity records a successful login on the connection's user.
func (r *Registry) SetIdentity(sid core.SessionID, name string, role domain.Role, modules []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[sid]
	if !ok {
		u = &domain.User{ID: domain.UserID(sid)}
		r.users[sid] = u
	}
	if err := u.SetName(name); err != nil {
		return err
	}
	u.Role = role
	u.Modules = modules
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("name", name).Str("role", string(role)).Msg("identity set")
	return nil
}

func (r *Registry) BindSignal(sid core.SessionID, sess core.MemberSession, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sid] = &sessionEntry{Session: sess, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("bound signal")
}

func (r *Registry) GetSession(sid core.SessionID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Session, true
	}
	return nil, false
}

func (r *Registry) Unbind(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sid)
	delete(r.users, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("unbind session")
}

// LectureOf reports the lecture a connection is currently joined to.
func (r *Registry) LectureOf(sid core.SessionID) (domain.BuildingKey, core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.sessions[sid]
	if !ok || entry.Lecture == "" {
		return "", nil, false
	}
	return entry.Lecture, entry.Session, true
}

func (r *Registry) UpdateLecture(sid core.SessionID, key domain.BuildingKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.sessions[sid]
	if !ok {
		return false
	}
	entry.Lecture = key
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Str("building", string(key)).Msg("updated lecture")
	return true
}

func (r *Registry) RemoveLecture(sid core.SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.sessions[sid]; ok {
		entry.Lecture = ""
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("removed lecture association")
}

type regSnap struct {
	SID     core.SessionID
	Session core.MemberSession
}

func (r *Registry) MembersOfLecture(key domain.BuildingKey) []regSnap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]regSnap, 0, len(r.sessions))
	for sid, e := range r.sessions {
		if e.Lecture == key {
			out = append(out, regSnap{SID: sid, Session: e.Session})
		}
	}
	return out
}

func (r *Registry) All() []regSnap {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]regSnap, 0, len(r.sessions))
	for sid, e := range r.sessions {
		out = append(out, regSnap{SID: sid, Session: e.Session})
	}
	return out
}

func (r *Registry) Cancel(sid core.SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}
