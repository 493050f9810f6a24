package signal

import (
	"github.com/rs/zerolog/log"

	"lecturehall/internal/core"
	"lecturehall/internal/domain"
)

type chatMessagePayload struct {
	Type     string `json:"type"`
	Building string `json:"building" validate:"required"`
	Text     string `json:"text" validate:"required"`
}

func (ctl *SignalWSController) handleChatMessage(sid core.SessionID, conn *WsSignalConn, data []byte) {
	p, ok := bindPayload[chatMessagePayload](ctl, conn, data, "error")
	if !ok {
		return
	}

	key, err := domain.ParseBuildingKey(p.Building)
	if err != nil {
		ctl.sendError(conn, "error", err.Error())
		return
	}

	user := ctl.Registry.GetOrCreateUser(sid)
	if !ctl.Limiter.Allow(user.ID) {
		log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("chat throttled")
		ctl.sendError(conn, "error", "too many messages, slow down")
		return
	}

	// Author comes from the connection identity, never the payload.
	if err := ctl.Relay.PostChat(key, user.Name, p.Text); err != nil {
		ctl.sendError(conn, "error", err.Error())
	}
}
