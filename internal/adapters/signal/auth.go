package signal

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"lecturehall/internal/core"
	"lecturehall/internal/domain"
)

type loginPayload struct {
	Type     string `json:"type"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type registerPayload struct {
	Type     string   `json:"type"`
	Name     string   `json:"name" validate:"required"`
	Password string   `json:"password" validate:"required"`
	Modules  []string `json:"modules" validate:"required,min=1"`
}

func (ctl *SignalWSController) handleStudentLogin(ctx context.Context, sid core.SessionID, conn *WsSignalConn, data []byte) {
	p, ok := bindPayload[loginPayload](ctl, conn, data, "login_error")
	if !ok {
		return
	}

	acct, err := ctl.Backend.StudentLogin(ctx, p.Name, p.Password)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("student login failed")
		ctl.sendError(conn, "login_error", err.Error())
		return
	}

	if !ctl.identify(sid, conn, acct.Name, domain.RoleStudent, acct.Modules) {
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("name", acct.Name).Msg("student logged in")
	ctl.sendJSON(conn, struct {
		Type string       `json:"type"`
		User *domain.User `json:"user"`
	}{
		Type: "student_login_result",
		User: ctl.Registry.GetOrCreateUser(sid),
	})
}

func (ctl *SignalWSController) handleLecturerLogin(ctx context.Context, sid core.SessionID, conn *WsSignalConn, data []byte) {
	p, ok := bindPayload[loginPayload](ctl, conn, data, "login_error")
	if !ok {
		return
	}

	acct, err := ctl.Backend.LecturerLogin(ctx, p.Name, p.Password)
	if err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("lecturer login failed")
		ctl.sendError(conn, "login_error", err.Error())
		return
	}

	if !ctl.identify(sid, conn, acct.Name, domain.RoleLecturer, acct.Modules) {
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("name", acct.Name).Msg("lecturer logged in")
	ctl.sendJSON(conn, struct {
		Type string       `json:"type"`
		User *domain.User `json:"user"`
	}{
		Type: "lecturer_login_result",
		User: ctl.Registry.GetOrCreateUser(sid),
	})
}

func (ctl *SignalWSController) handleStudentRegister(ctx context.Context, sid core.SessionID, conn *WsSignalConn, data []byte) {
	p, ok := bindPayload[registerPayload](ctl, conn, data, "register_error")
	if !ok {
		return
	}

	if err := ctl.Backend.StudentEnroll(ctx, p.Name, p.Password, p.Modules); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("student enroll failed")
		ctl.sendError(conn, "register_error", err.Error())
		return
	}

	ctl.sendJSON(conn, map[string]any{"type": "student_register_result", "msg": "OK"})
}

func (ctl *SignalWSController) handleLecturerRegister(ctx context.Context, sid core.SessionID, conn *WsSignalConn, data []byte) {
	p, ok := bindPayload[registerPayload](ctl, conn, data, "register_error")
	if !ok {
		return
	}

	if err := ctl.Backend.LecturerHire(ctx, p.Name, p.Password, p.Modules); err != nil {
		log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("lecturer hire failed")
		ctl.sendError(conn, "register_error", err.Error())
		return
	}

	ctl.sendJSON(conn, map[string]any{"type": "lecturer_register_result", "msg": "OK"})
}

func (ctl *SignalWSController) handleWhoAmI(sid core.SessionID, conn *WsSignalConn) {
	user := ctl.Registry.GetOrCreateUser(sid)

	resp := struct {
		Type     string             `json:"type"`
		User     *domain.User       `json:"user"`
		Building domain.BuildingKey `json:"building,omitempty"`
	}{
		Type: "whoami",
		User: user,
	}
	if key, _, ok := ctl.Registry.LectureOf(sid); ok {
		resp.Building = key
	}
	ctl.sendJSON(conn, resp)
}

func (ctl *SignalWSController) identify(sid core.SessionID, conn *WsSignalConn, name string, role domain.Role, modules []string) bool {
	if err := ctl.Registry.SetIdentity(sid, name, role, modules); err != nil {
		ctl.sendError(conn, "login_error", "invalid_name")
		return false
	}
	return true
}

// bindPayload unmarshals and validates an inbound event; malformed
// input is reported back to the sender, never fatal.
func bindPayload[T any](ctl *SignalWSController, conn *WsSignalConn, data []byte, errType string) (T, bool) {
	var p T
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad payload")
		ctl.sendError(conn, errType, "bad_payload")
		return p, false
	}
	if err := validate.Struct(&p); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("invalid payload")
		ctl.sendError(conn, errType, "bad_payload")
		return p, false
	}
	return p, true
}
