package signal

import (
	"lecturehall/internal/core"
	"lecturehall/internal/domain"
)

type boardUpdatePayload struct {
	Type     string `json:"type"`
	Building string `json:"building" validate:"required"`
	Content  string `json:"content"`
}

// handleBoardUpdate overwrites the shared board. Last writer wins;
// concurrent edits are not merged.
func (ctl *SignalWSController) handleBoardUpdate(sid core.SessionID, conn *WsSignalConn, data []byte) {
	p, ok := bindPayload[boardUpdatePayload](ctl, conn, data, "error")
	if !ok {
		return
	}

	key, err := domain.ParseBuildingKey(p.Building)
	if err != nil {
		ctl.sendError(conn, "error", err.Error())
		return
	}

	if err := ctl.Relay.UpdateBoard(key, p.Content); err != nil {
		ctl.sendError(conn, "error", err.Error())
	}
}
