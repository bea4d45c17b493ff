package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"attendkiosk/internal/attendance"
	"attendkiosk/internal/backup"
	"attendkiosk/internal/config"
	"attendkiosk/internal/logging"
	"attendkiosk/internal/queue"
	"attendkiosk/internal/store"
)

// Worker consumes mark events from redis and writes daily export snapshots.
func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		cancel()
	}()

	if cfg.QueueBackend == "memory" {
		log.Fatal("QUEUE_BACKEND=memory runs snapshots inside the api process; nothing to consume")
	}

	handle, err := store.Open(ctx, store.Options{
		Kind:        cfg.StoreBackend,
		Key:         cfg.StoreKey,
		Path:        cfg.StorePath,
		QuotaBytes:  cfg.StoreQuotaBytes,
		DatabaseURL: cfg.DatabaseURL,
		RedisAddr:   cfg.RedisAddr,
	})
	if err != nil {
		log.WithError(err).Fatal("store open failed")
	}
	defer handle.Close()

	directory, err := attendance.LoadDirectory(cfg.StudentsFile)
	if err != nil {
		log.WithError(err).Fatal("student directory")
	}
	svc, err := attendance.NewService(attendance.ServiceConfig{
		Store:     store.NewRecords(handle.Backend),
		Directory: directory,
		Location:  cfg.Location(),
		Logger:    log.WithField("component", "attendance"),
	})
	if err != nil {
		log.WithError(err).Fatal("attendance service")
	}

	snap, err := backup.NewSnapshotter(cfg.BackupDir, svc, log.WithField("component", "backup"))
	if err != nil {
		log.WithError(err).Fatal("backup dir")
	}

	redisClient := store.NewRedis(cfg.RedisAddr)
	defer redisClient.Close()
	q := queue.NewRedisQueue(redisClient.Client, cfg.QueueKey, log)

	events, err := q.Consume(ctx)
	if err != nil {
		log.WithError(err).Fatal("queue consume init failed")
	}

	log.WithField("dir", cfg.BackupDir).Info("worker started, waiting for mark events")
	snap.Run(ctx, events)
	log.Info("worker stopped")
}
