package notify

import (
	"context"
	"fmt"

	"ticketcrm_backend/platform/config"
	"ticketcrm_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// Worker consumes notification tasks and sends the emails.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	sender Sender
	log    *logger.Logger
}

// NewWorker creates the asynq server and registers the task handlers.
func NewWorker(cfg config.WorkerConfig, sender Sender, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		sender: sender,
		log:    log,
	}

	mux.HandleFunc(TaskLeadOwnerNotify, w.handleLeadOwnerNotify)

	return w, nil
}

func (w *Worker) handleLeadOwnerNotify(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseLeadOwnerNotifyPayload(task)
	if err != nil {
		return err
	}

	if payload.OwnerEmail == "" {
		return nil
	}

	err = w.sender.SendLeadAssignedEmail(ctx, payload.OwnerEmail, LeadAssignedEmail{
		LeadName:     payload.LeadName,
		Channel:      payload.Channel,
		EventName:    payload.EventName,
		CategoryName: payload.CategoryName,
	})
	if err != nil {
		w.log.Error("owner notification failed", "lead_id", payload.LeadID, "error", err)
		return err
	}

	w.log.Info("owner notification sent", "lead_id", payload.LeadID, "owner", payload.OwnerEmail)
	return nil
}

// Run serves tasks until the context is canceled.
func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("notification worker stopped", "error", err)
	}
}
