package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"attendkiosk/internal/api"
	"attendkiosk/internal/attendance"
	"attendkiosk/internal/auth"
	"attendkiosk/internal/backup"
	"attendkiosk/internal/config"
	"attendkiosk/internal/httpmiddleware"
	"attendkiosk/internal/logging"
	"attendkiosk/internal/metrics"
	"attendkiosk/internal/queue"
	"attendkiosk/internal/store"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg, log); err != nil {
		log.WithError(err).Fatal("http server failed")
	}
}

func runHTTP(cfg config.App, log *logrus.Logger) error {
	ctx := context.Background()

	handle, err := store.Open(ctx, store.Options{
		Kind:        cfg.StoreBackend,
		Key:         cfg.StoreKey,
		Path:        cfg.StorePath,
		QuotaBytes:  cfg.StoreQuotaBytes,
		DatabaseURL: cfg.DatabaseURL,
		RedisAddr:   cfg.RedisAddr,
	})
	if err != nil {
		return err
	}
	defer handle.Close()

	directory, err := attendance.LoadDirectory(cfg.StudentsFile)
	if err != nil {
		return err
	}
	log.WithField("students", directory.Len()).Info("student directory loaded")

	var observer attendance.Observer
	if cfg.MetricsEnabled {
		observer = metrics.New(prometheus.DefaultRegisterer)
	}
	svc, err := attendance.NewService(attendance.ServiceConfig{
		Store:     store.NewRecords(handle.Backend),
		Directory: directory,
		Location:  cfg.Location(),
		Logger:    log.WithField("component", "attendance"),
		Observer:  observer,
	})
	if err != nil {
		return err
	}

	gate, err := auth.NewGate(auth.GateConfig{
		Email:      cfg.AdminEmail,
		Password:   cfg.AdminPassword,
		Issuer:     cfg.JWTIssuer,
		SigningKey: cfg.JWTSigningKey,
		TTL:        cfg.SessionTTL,
	})
	if err != nil {
		return err
	}

	// With the in-memory queue the snapshot writer runs in this process;
	// with redis a separate worker consumes the events.
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	var events queue.Queue
	checks := map[string]api.HealthCheck{"store": handle.Healthy}
	if cfg.QueueBackend == "memory" {
		mem := queue.NewInMemory(64)
		events = mem
		snap, err := backup.NewSnapshotter(cfg.BackupDir, svc, log.WithField("component", "backup"))
		if err != nil {
			return err
		}
		ch, err := mem.Consume(workerCtx)
		if err != nil {
			return err
		}
		go snap.Run(workerCtx, ch)
	} else {
		redisClient := store.NewRedis(cfg.RedisAddr)
		defer redisClient.Close()
		events = queue.NewRedisQueue(redisClient.Client, cfg.QueueKey, log)
		checks["queue"] = redisClient.Healthy
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: false,
		MaxAge:           24 * time.Hour,
	}))
	r.Use(securityHeaders())

	if cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	limiter := httpmiddleware.NewClientLimiter(cfg.RateLimitPerMin)
	api.New(svc, gate, events, checks, log.WithField("component", "http")).
		Register(r, limiter.GinMiddleware())

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"port": cfg.HTTPPort, "store": handle.Backend.Name()}).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server")

	// Give an in-flight mark time to finish writing.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server forced shutdown")
	}

	log.Info("server exited")
	return nil
}

// securityHeaders sets the usual browser hardening headers.
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}
