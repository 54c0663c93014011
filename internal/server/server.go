package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	authdomain "github.com/smallbiznis/hushbox/internal/auth/domain"
	"github.com/smallbiznis/hushbox/internal/auth/gate"
	authoauth "github.com/smallbiznis/hushbox/internal/auth/oauth"
	"github.com/smallbiznis/hushbox/internal/auth/session"
	"github.com/smallbiznis/hushbox/internal/auth/token"
	"github.com/smallbiznis/hushbox/internal/cache"
	"github.com/smallbiznis/hushbox/internal/config"
	messagedomain "github.com/smallbiznis/hushbox/internal/message/domain"
	"github.com/smallbiznis/hushbox/internal/observability"
	obsmiddleware "github.com/smallbiznis/hushbox/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/hushbox/internal/observability/metrics"
	obstracing "github.com/smallbiznis/hushbox/internal/observability/tracing"
	"github.com/smallbiznis/hushbox/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const publicDir = "./public"

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Provide(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	if err := registerValidators(); err != nil {
		panic(err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware())
	r.Use(httpMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, s *Server, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Fatal("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine     *gin.Engine
	log        *zap.Logger
	authsvc    authdomain.Service
	oauthsvc   authoauth.Service
	messagesvc messagedomain.Service
	tokens     *token.Service
	sessions   *session.Manager
	profiles   cache.ProfileCache
	limiter    ratelimit.Limiter
	limits     *config.LimitsHolder
	obsMetrics *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Log        *zap.Logger
	Authsvc    authdomain.Service
	OAuthsvc   authoauth.Service
	Messagesvc messagedomain.Service
	Tokens     *token.Service
	Sessions   *session.Manager
	Profiles   cache.ProfileCache
	Limiter    ratelimit.Limiter
	Limits     *config.LimitsHolder
	ObsMetrics *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:     p.Gin,
		log:        p.Log.Named("http.server"),
		authsvc:    p.Authsvc,
		oauthsvc:   p.OAuthsvc,
		messagesvc: p.Messagesvc,
		tokens:     p.Tokens,
		sessions:   p.Sessions,
		profiles:   p.Profiles,
		limiter:    p.Limiter,
		limits:     p.Limits,
		obsMetrics: p.ObsMetrics,
	}

	svc.registerAuthRoutes()
	svc.registerMessageRoutes()
	svc.registerUserRoutes()
	svc.registerUIRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/api/auth")

	auth.POST("/signup", s.Signup)
	auth.POST("/signin", s.RateLimit(rateLimitEndpointSignin, signinLimit), s.Signin)
	auth.POST("/signout", s.Signout)
	auth.POST("/refresh", s.Refresh)
	auth.GET("/verify", s.Verify)
	auth.PATCH("/change-password", s.AuthRequired(), s.ChangePassword)
	auth.PATCH("/update-username", s.AuthRequired(), s.UpdateUsername)
	auth.DELETE("/delete-account", s.AuthRequired(), s.DeleteAccount)

	auth.GET("/google", s.GoogleAuth)
	auth.GET("/google/callback", s.GoogleCallback)
}

func (s *Server) registerMessageRoutes() {
	messages := s.engine.Group("/api/messages")

	messages.POST("/send", s.RateLimit(rateLimitEndpointSend, sendLimit), s.SendMessage)

	owned := messages.Group("", s.AuthRequired())
	{
		owned.GET("", s.ListMessages)
		owned.PATCH("/:id", s.UpdateMessage)
		owned.DELETE("/:id", s.DeleteMessage)
	}
}

func (s *Server) registerUserRoutes() {
	s.engine.GET("/api/users/:username", s.GetPublicProfile)
}

func (s *Server) registerUIRoutes() {
	pages := s.engine.Group("", gate.Middleware(s.tokens, session.AccessCookieName))
	{
		pages.GET("/", serveIndex)
		pages.GET("/dashboard", serveIndex)
		pages.GET("/profile", serveIndex)
		pages.GET("/settings", serveIndex)
		pages.GET("/auth/*path", serveIndex)
	}
	s.engine.GET("/u/:username", serveIndex)

	s.engine.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			AbortWithError(c, ErrNotFound)
			return
		}
		c.File(publicDir + c.Request.URL.Path)
	})
}

func serveIndex(c *gin.Context) {
	c.File(publicDir + "/index.html")
}
