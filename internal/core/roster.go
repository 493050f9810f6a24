package core

import (
	"sync"

	"github.com/rs/zerolog/log"

	"lecturehall/internal/domain"
)

// rosterEntry pins the participant's identity as it was at Add time.
// Cross-goroutine readers (counts, snapshots) read these copies and
// never touch the live Participant, which only its own connection
// goroutine mutates.
type rosterEntry struct {
	sess MemberSession
	id   domain.UserID
	name string
	role domain.Role
}

// Roster is the threadsafe membership set of one lecture.
// It never closes adapter-owned resources.
type Roster struct {
	mu     sync.RWMutex
	bySID  map[SessionID]rosterEntry
	byUser map[domain.UserID]SessionID
}

func NewRoster() *Roster {
	return &Roster{
		bySID:  make(map[SessionID]rosterEntry),
		byUser: make(map[domain.UserID]SessionID),
	}
}

func (r *Roster) Add(sid SessionID, ms MemberSession) {
	p := ms.Meta()
	e := rosterEntry{sess: ms, id: p.User.ID, name: p.User.Name, role: p.Role}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bySID[sid] = e
	r.byUser[e.id] = sid
	log.Info().Str("module", "core.roster").Str("sid", string(sid)).Str("user", string(e.id)).Msg("participant added")
}

func (r *Roster) Remove(sid SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.bySID[sid]; ok {
		delete(r.byUser, e.id)
	}
	delete(r.bySID, sid)
	log.Info().Str("module", "core.roster").Str("sid", string(sid)).Msg("participant removed")
}

// StudentCount is the roster size excluding lecturer-role participants;
// the directory view reports only student headcount.
func (r *Roster) StudentCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, e := range r.bySID {
		if e.role != domain.RoleLecturer {
			n++
		}
	}
	return n
}

func (r *Roster) Snapshot() []ParticipantDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ParticipantDTO, 0, len(r.bySID))
	for _, e := range r.bySID {
		out = append(out, ParticipantDTO{ID: e.id, Name: e.name, Role: e.role})
	}
	return out
}

func (r *Roster) Each(fn func(SessionID, MemberSession)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for sid, e := range r.bySID {
		fn(sid, e.sess)
	}
}
