package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/paybridgehq/paybridge/internal/config"
	"github.com/paybridgehq/paybridge/internal/gateway/domain"
	"github.com/paybridgehq/paybridge/internal/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg     config.Config
	Log     *zap.Logger
	Gateway domain.Service
}

type Server struct {
	cfg     config.Config
	log     *zap.Logger
	gateway domain.Service
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:     p.Cfg,
		log:     p.Log.Named("server"),
		gateway: p.Gateway,
	}
}

func NewEngine(m *metrics.Metrics) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(metrics.GinMiddleware(m))
	engine.GET("/metrics", gin.WrapH(m.Handler()))
	return engine
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/", s.Home)
	r.POST("/webhook", s.WebhookCallback)
	r.GET("/verify-payment/:identifier", s.VerifyPayment)
	r.POST("/generate-account-no/:identifier", s.GenerateAccountNumber)
	r.POST("/build-payment-info/:identifier", s.BuildPaymentInfo)
}

func RunHTTP(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: engine}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
