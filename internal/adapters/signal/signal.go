package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"lecturehall/internal/app"
	"lecturehall/internal/backend"
	"lecturehall/internal/config"
	"lecturehall/internal/core"
	"lecturehall/internal/domain"
)

var ErrBackpressure = errors.New("backpressure")

var validate = validator.New()

type SignalWSController struct {
	Cfg      *config.Config
	Registry *app.Registry
	Relay    *app.Relay
	Backend  *backend.Client
	Limiter  *ChatRateLimiter
}

func NewSignalWSController(cfg *config.Config, registry *app.Registry, relay *app.Relay, bk *backend.Client) *SignalWSController {
	return &SignalWSController{
		Cfg:      cfg,
		Registry: registry,
		Relay:    relay,
		Backend:  bk,
		Limiter:  NewChatRateLimiter(cfg.Chat.RateLimit, cfg.Chat.RateWindow),
	}
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	sid := core.SessionID(c.GetString("client_token"))
	log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("new WS connection")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Msg("ws upgrade")
		return
	}

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	user := ctl.Registry.GetOrCreateUser(sid)
	meta := domain.NewParticipant(user, user.Role)
	sess := core.NewMemberSession(meta, conn)
	ctx, cancel := context.WithCancel(ctx)
	ctl.Registry.BindSignal(sid, sess, cancel)

	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, sid, conn)
}

// sendError reports a failure to the originating connection only.
func (ctl *SignalWSController) sendError(conn *WsSignalConn, typ, msg string) {
	ctl.sendJSON(conn, map[string]any{
		"type":  typ,
		"error": msg,
	})
}
