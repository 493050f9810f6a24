package http

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"lecturehall/internal/adapters/signal"
	"lecturehall/internal/app"
	"lecturehall/internal/backend"
	"lecturehall/internal/config"
)

func genClientToken() string {
	return uuid.NewString()
}

func ClientTokenMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie("ct")
		if token == "" {
			token = genClientToken()
			c.SetCookie("ct", token, 3600*24*7, "/", "", false, true)
		}
		c.Set("client_token", token)
		c.Next()
	}
}

func SetupRouter(ctx context.Context, cfg *config.Config, ctrl *signal.SignalWSController, relay *app.Relay, bk *backend.Client) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(cfg.Secret))
	r.Use(sessions.Sessions("LectureHallSessions", store))
	r.Use(ClientTokenMiddleware())

	r.Static("/static", cfg.StaticPath)
	r.GET("/", func(c *gin.Context) {
		c.File(cfg.StaticPath + "/index.html")
	})

	log.Info().Str("module", "adapters.http").Str("static", cfg.StaticPath).Msg("router setup")

	api := r.Group("/api")

	// The browser client enrolls over plain REST before it opens the
	// socket; these just proxy to the university backend.
	api.POST("/student/enroll", handleEnroll(bk.StudentEnroll))
	api.POST("/lecturer/hire", handleEnroll(bk.LecturerHire))

	api.GET("/lectures", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"result": true, "lectures": relay.Directory()})
	})

	api.GET("/ws/signal", func(c *gin.Context) {
		log.Info().Str("module", "adapters.http").Str("sid", c.GetString("client_token")).Msg("ws signal endpoint hit")
		ctrl.HandleSignal(ctx, c)
	})

	return r
}

type enrollRequest struct {
	Name     string   `json:"name" binding:"required"`
	Password string   `json:"password" binding:"required"`
	Modules  []string `json:"modules" binding:"required,min=1"`
}

func handleEnroll(call func(ctx context.Context, name, password string, modules []string) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req enrollRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"result": false, "msg": "missing or invalid fields"})
			return
		}
		if err := call(c.Request.Context(), req.Name, req.Password, req.Modules); err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"result": false, "msg": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"result": true, "msg": "OK"})
	}
}
