package signal

import (
	"context"

	"github.com/rs/zerolog/log"

	"lecturehall/internal/app"
	"lecturehall/internal/core"
	"lecturehall/internal/domain"
)

type startLecturePayload struct {
	Type     string `json:"type"`
	Title    string `json:"title" validate:"required"`
	Module   string `json:"module" validate:"required"`
	Building string `json:"building" validate:"required"`
	Date     string `json:"date" validate:"required"`
	Time     string `json:"time" validate:"required"`
}

func (ctl *SignalWSController) handleStartLecture(ctx context.Context, sid core.SessionID, conn *WsSignalConn, data []byte) {
	p, ok := bindPayload[startLecturePayload](ctl, conn, data, "error")
	if !ok {
		return
	}

	user := ctl.Registry.GetOrCreateUser(sid)
	if user.Role != domain.RoleLecturer {
		ctl.sendError(conn, "error", "only lecturers can start a lecture")
		return
	}

	key, err := domain.ParseBuildingKey(p.Building)
	if err != nil {
		ctl.sendError(conn, "error", err.Error())
		return
	}

	// Book with the backend of record first; the relay only announces
	// lectures the backend accepted.
	if err := ctl.Backend.MakeLecture(ctx, p.Title, p.Module, user.Name, p.Date, p.Time); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("lecture make failed")
		ctl.sendError(conn, "error", err.Error())
		return
	}

	lec := ctl.Relay.StartOrUpdate(key, domain.Lecture{
		Title:        p.Title,
		Module:       p.Module,
		LecturerName: user.Name,
	})
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("building", string(key)).Str("title", lec.Title).Msg("lecture started")
	ctl.sendJSON(conn, struct {
		Type     string             `json:"type"`
		Building domain.BuildingKey `json:"building"`
		Lecture  domain.Lecture     `json:"lecture"`
	}{
		Type:     "lecture_started",
		Building: key,
		Lecture:  lec,
	})
}

type joinLecturePayload struct {
	Type     string `json:"type"`
	Building string `json:"building" validate:"required"`
	Role     string `json:"role,omitempty"`
	Name     string `json:"name,omitempty"`
}

func (ctl *SignalWSController) handleJoinLecture(sid core.SessionID, conn *WsSignalConn, data []byte) {
	p, ok := bindPayload[joinLecturePayload](ctl, conn, data, "error")
	if !ok {
		return
	}

	key, err := domain.ParseBuildingKey(p.Building)
	if err != nil {
		ctl.sendError(conn, "error", err.Error())
		return
	}

	sess, ok := ctl.Registry.GetSession(sid)
	if !ok {
		log.Error().Str("module", "signal").Str("sid", string(sid)).Msg("join without bound session")
		return
	}

	meta := sess.Meta()
	if p.Name != "" {
		if err := meta.User.SetName(p.Name); err != nil {
			ctl.sendError(conn, "error", err.Error())
			return
		}
	}
	if p.Role != "" {
		role, err := domain.ParseRole(p.Role)
		if err != nil {
			ctl.sendError(conn, "error", err.Error())
			return
		}
		meta.Role = role
	} else {
		meta.Role = meta.User.Role
	}

	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("building", string(key)).Str("role", string(meta.Role)).Msg("join")
	snap := ctl.Relay.Join(key, sid, sess)

	ctl.sendJSON(conn, struct {
		Type     string             `json:"type"`
		Building domain.BuildingKey `json:"building"`
		app.LectureSnapshot
	}{
		Type:            "lecture_state",
		Building:        key,
		LectureSnapshot: snap,
	})
}

// handleLeaveLecture drops the current lecture, the connection stays up.
func (ctl *SignalWSController) handleLeaveLecture(sid core.SessionID, conn *WsSignalConn) {
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("leave")
	ctl.Relay.Leave(sid)
	ctl.sendJSON(conn, map[string]any{"type": "left"})
}

type endLecturePayload struct {
	Type     string `json:"type"`
	Building string `json:"building" validate:"required"`
}

func (ctl *SignalWSController) handleEndLecture(sid core.SessionID, conn *WsSignalConn, data []byte) {
	p, ok := bindPayload[endLecturePayload](ctl, conn, data, "error")
	if !ok {
		return
	}

	user := ctl.Registry.GetOrCreateUser(sid)
	if user.Role != domain.RoleLecturer {
		ctl.sendError(conn, "error", "only lecturers can end a lecture")
		return
	}

	key, err := domain.ParseBuildingKey(p.Building)
	if err != nil {
		ctl.sendError(conn, "error", err.Error())
		return
	}

	if err := ctl.Relay.End(key); err != nil {
		ctl.sendError(conn, "error", err.Error())
	}
}
