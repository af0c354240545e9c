package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
)

type Scheduler interface {
	RegisterTasks() error
	Run()
	Shutdown()
}

type scheduler struct {
	asynqScheduler *asynq.Scheduler
	log            *slog.Logger
}

func NewScheduler(redisOpt asynq.RedisConnOpt, log *slog.Logger) Scheduler {
	return &scheduler{
		asynqScheduler: asynq.NewScheduler(redisOpt, nil),
		log:            log,
	}
}

func (s *scheduler) RegisterTasks() error {
	regen, err := NewEnergyRegenTask()
	if err != nil {
		return err
	}
	// Energy trickles back every minute so idle players recover.
	if _, err := s.asynqScheduler.Register("* * * * *", regen); err != nil {
		return err
	}

	reset, err := NewQuestResetTask()
	if err != nil {
		return err
	}
	if _, err := s.asynqScheduler.Register("0 0 * * *", reset); err != nil {
		return err
	}

	if s.log != nil {
		s.log.InfoContext(context.Background(), "scheduler: registered recurring game tasks")
	}

	return nil
}

func (s *scheduler) Run() {
	if s.log != nil {
		s.log.InfoContext(context.Background(), "scheduler: starting")
	}

	go func() {
		if err := s.asynqScheduler.Run(); err != nil && s.log != nil {
			s.log.ErrorContext(context.Background(), "scheduler: run failed", "error", err)
		}
	}()
}

func (s *scheduler) Shutdown() {
	if s.log != nil {
		s.log.InfoContext(context.Background(), "scheduler: shutting down")
	}

	s.asynqScheduler.Shutdown()
}
