package app

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"lecturehall/internal/core"
	"lecturehall/internal/domain"
)

var ErrUnknownLecture = errors.New("unknown lecture")

// Scope selects how board and chat events are fanned out. Directory
// events (building updates, student counts, lecture ended) are global
// either way since the building grid view needs them.
type Scope string

const (
	// ScopeGlobal delivers to every connected client; clients filter by
	// building key. Compatible with the original directory behavior.
	ScopeGlobal Scope = "global"
	// ScopeLecture delivers only to the lecture's own participants.
	ScopeLecture Scope = "lecture"
)

type RelayOptions struct {
	Scope Scope
	// ChatHistory caps retained messages per lecture; 0 keeps everything.
	ChatHistory int
	// Strict makes operations on unknown building keys return
	// ErrUnknownLecture instead of silently doing nothing.
	Strict bool
}

// lectureState is the live state of one running lecture.
type lectureState struct {
	lecture domain.Lecture
	board   string
	chat    []domain.ChatMessage
}

// LectureSnapshot is what a joining participant receives to catch up.
type LectureSnapshot struct {
	Lecture      domain.Lecture        `json:"lecture"`
	Board        string                `json:"board"`
	Chat         []domain.ChatMessage  `json:"chat"`
	Students     int                   `json:"students"`
	Participants []core.ParticipantDTO `json:"participants"`
}

type BuildingInfo struct {
	Building domain.BuildingKey `json:"building"`
	Lecture  domain.Lecture     `json:"lecture"`
	Students int                `json:"students"`
}

// Relay owns all lecture state and rosters and is the single source of
// truth for broadcast fan-out.
type Relay struct {
	opts      RelayOptions
	registry  *Registry
	publisher Publisher

	mu       sync.RWMutex
	sessions map[domain.BuildingKey]*lectureState
	rosters  map[domain.BuildingKey]*core.Roster
}

func NewRelay(registry *Registry, publisher Publisher, opts RelayOptions) *Relay {
	if opts.Scope == "" {
		opts.Scope = ScopeLecture
	}
	return &Relay{
		opts:      opts,
		registry:  registry,
		publisher: publisher,
		sessions:  make(map[domain.BuildingKey]*lectureState),
		rosters:   make(map[domain.BuildingKey]*core.Roster),
	}
}

// StartOrUpdate creates the lecture under key or merges non-empty
// metadata into the running one, then announces the slot to everyone.
func (r *Relay) StartOrUpdate(key domain.BuildingKey, meta domain.Lecture) domain.Lecture {
	r.mu.Lock()
	st, ok := r.sessions[key]
	if !ok {
		st = &lectureState{lecture: *domain.NewLecture(key)}
		r.sessions[key] = st
		r.rosters[key] = core.NewRoster()
	}
	st.lecture.Merge(meta)
	lec := st.lecture
	r.mu.Unlock()

	log.Info().Str("module", "app.relay").Str("building", string(key)).Str("title", lec.Title).Bool("created", !ok).Msg("lecture started")
	r.publisher.BroadcastAll(buildingUpdateEvent{Type: "building_update", Building: key, Lecture: lec})
	return lec
}

// Join registers the session in the lecture's roster, creating the
// lecture lazily, and returns the catch-up snapshot. A connection sits
// in at most one roster; joining moves it out of the previous one.
func (r *Relay) Join(key domain.BuildingKey, sid core.SessionID, ms core.MemberSession) LectureSnapshot {
	if prev, _, ok := r.registry.LectureOf(sid); ok && prev != key {
		r.Leave(sid)
	}

	r.mu.Lock()
	st, ok := r.sessions[key]
	if !ok {
		st = &lectureState{lecture: *domain.NewLecture(key)}
		r.sessions[key] = st
		r.rosters[key] = core.NewRoster()
	}
	roster := r.rosters[key]
	roster.Add(sid, ms)
	snap := LectureSnapshot{
		Lecture:      st.lecture,
		Board:        st.board,
		Chat:         append([]domain.ChatMessage(nil), st.chat...),
		Students:     roster.StudentCount(),
		Participants: roster.Snapshot(),
	}
	r.mu.Unlock()

	r.registry.UpdateLecture(sid, key)
	log.Info().Str("module", "app.relay").Str("sid", string(sid)).Str("building", string(key)).Msg("joined lecture")
	r.publisher.BroadcastAll(countUpdateEvent{Type: "count_update", Building: key, Students: snap.Students})
	return snap
}

// Leave drops the connection from whatever roster it is in. Calling it
// for a connection that is nowhere is a no-op, never an error.
func (r *Relay) Leave(sid core.SessionID) {
	key, _, ok := r.registry.LectureOf(sid)
	if !ok {
		return
	}

	r.mu.Lock()
	roster, ok := r.rosters[key]
	if ok {
		roster.Remove(sid)
	}
	students := 0
	if ok {
		students = roster.StudentCount()
	}
	r.mu.Unlock()

	r.registry.RemoveLecture(sid)
	if !ok {
		return
	}
	log.Info().Str("module", "app.relay").Str("sid", string(sid)).Str("building", string(key)).Msg("left lecture")
	r.publisher.BroadcastAll(countUpdateEvent{Type: "count_update", Building: key, Students: students})
}

// UpdateBoard overwrites the board verbatim. Last writer wins.
func (r *Relay) UpdateBoard(key domain.BuildingKey, content string) error {
	r.mu.Lock()
	st, ok := r.sessions[key]
	if !ok {
		r.mu.Unlock()
		return r.unknown(key, "board update")
	}
	st.board = content
	r.mu.Unlock()

	r.broadcast(key, boardUpdateEvent{Type: "board_update", Building: key, Content: content})
	return nil
}

// PostChat appends the message and fans it out in append order.
func (r *Relay) PostChat(key domain.BuildingKey, author, text string) error {
	msg := domain.ChatMessage{Author: author, Text: text, SentAt: time.Now()}

	r.mu.Lock()
	st, ok := r.sessions[key]
	if !ok {
		r.mu.Unlock()
		return r.unknown(key, "chat message")
	}
	st.chat = append(st.chat, msg)
	if r.opts.ChatHistory > 0 && len(st.chat) > r.opts.ChatHistory {
		st.chat = st.chat[len(st.chat)-r.opts.ChatHistory:]
	}
	r.mu.Unlock()

	r.broadcast(key, chatMessageEvent{Type: "chat_message", Building: key, Author: msg.Author, Text: msg.Text, SentAt: msg.SentAt})
	return nil
}

// End removes the lecture and its roster and tells everyone.
func (r *Relay) End(key domain.BuildingKey) error {
	r.mu.Lock()
	_, ok := r.sessions[key]
	if !ok {
		r.mu.Unlock()
		return r.unknown(key, "end lecture")
	}
	roster := r.rosters[key]
	delete(r.sessions, key)
	delete(r.rosters, key)
	r.mu.Unlock()

	if roster != nil {
		roster.Each(func(sid core.SessionID, _ core.MemberSession) {
			r.registry.RemoveLecture(sid)
		})
	}
	log.Info().Str("module", "app.relay").Str("building", string(key)).Msg("lecture ended")
	r.publisher.BroadcastAll(lectureEndedEvent{Type: "lecture_ended", Building: key})
	return nil
}

// StudentCount reports the current student headcount for a lecture.
func (r *Relay) StudentCount(key domain.BuildingKey) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if roster, ok := r.rosters[key]; ok {
		return roster.StudentCount()
	}
	return 0
}

// Directory lists the running lectures for the building grid view.
func (r *Relay) Directory() []BuildingInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]BuildingInfo, 0, len(r.sessions))
	for key, st := range r.sessions {
		out = append(out, BuildingInfo{Building: key, Lecture: st.lecture, Students: r.rosters[key].StudentCount()})
	}
	return out
}

func (r *Relay) broadcast(key domain.BuildingKey, v any) {
	if r.opts.Scope == ScopeGlobal {
		r.publisher.BroadcastAll(v)
		return
	}
	r.publisher.BroadcastLecture(key, v)
}

func (r *Relay) unknown(key domain.BuildingKey, op string) error {
	log.Debug().Str("module", "app.relay").Str("building", string(key)).Str("op", op).Msg("unknown lecture, ignoring")
	if r.opts.Strict {
		return ErrUnknownLecture
	}
	return nil
}
