package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ticketcrm_backend/internal/notify"
	"ticketcrm_backend/platform/config"
	"ticketcrm_backend/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting notification worker", "env", cfg.Env, "queue", cfg.AsynqQueueName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sender notify.Sender
	if cfg.GetNotifyEmailEnabled() {
		sender = notify.NewSMTPSender(cfg)
		log.Info("smtp sender initialized", "host", cfg.SMTPHost)
	} else {
		sender = notify.NewNoopSender(log)
		log.Info("email delivery disabled, using noop sender")
	}

	worker, err := notify.NewWorker(cfg, sender, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	worker.Run(ctx)
	log.Info("notification worker stopped")
}
