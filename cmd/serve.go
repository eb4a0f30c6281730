package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"equipment-tracker/internal/equipment_mgmt/equipment"
	"equipment-tracker/internal/equipment_mgmt/holders"
	"equipment-tracker/internal/equipment_mgmt/locations"
	"equipment-tracker/internal/equipment_mgmt/usage"
	"equipment-tracker/internal/platform/apierr"
	"equipment-tracker/internal/platform/auth"
	"equipment-tracker/internal/platform/db"
	"equipment-tracker/internal/platform/docs"
	"equipment-tracker/internal/platform/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	log.Info("starting", zap.String("mode", cfg.Mode), zap.String("version", cfg.Version))

	conn, err := db.Connect(cmd.Context(), cfg.DB)
	if err != nil {
		log.Error("database connection failed", zap.Error(err))
		return err
	}
	defer conn.Close()
	log.Info("connected to DB", zap.String("database", cfg.DB.DBName))

	r, err := newRouter(cfg, newServices(conn, cfg, log), log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Server.Addr), zap.Bool("tls", cfg.TLSEnabled()))
		var err error
		if cfg.TLSEnabled() {
			err = srv.ListenAndServeTLS(cfg.Server.Certificate.Cert, cfg.Server.Certificate.Key)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	select {
	case err, ok := <-errCh:
		if ok {
			log.Error("server stopped", zap.Error(err))
			return err
		}
		return nil
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
		return err
	}
	log.Info("server exited")
	return nil
}

func newRouter(cfg *db.Config, svc *services, log *zap.Logger) (*gin.Engine, error) {
	if cfg.Mode == db.ModeRelease {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(logger.RequestID(), logger.AccessLog(log), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if cfg.Mode == db.ModeDev {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.AllowOrigins,
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	docs.SwaggerInfo.BasePath = cfg.Server.BasePath
	docs.SwaggerInfo.Version = cfg.Version
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	if err := holders.RegisterValidators(); err != nil {
		return nil, err
	}
	pol := auth.NewPolicy(cfg.Auth.Enabled, cfg.Auth.JWTSecret)

	api := r.Group(cfg.Server.BasePath)
	auth.RegisterRoutes(api, svc.Auth, pol)
	holders.RegisterRoutes(api, svc.Holders, pol)
	equipment.RegisterRoutes(api, svc.Equipment, pol)
	locations.RegisterRoutes(api, svc.Locations, pol)
	usage.RegisterRoutes(api, svc.Usage, pol)

	r.NoRoute(func(c *gin.Context) {
		apierr.Respond(c, apierr.ErrNotFound("route not found"))
	})
	return r, nil
}
