package schedule

import (
	"context"
	"fmt"

	"inteldesk/internal/config"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DispatchScheduler runs the dispatcher on the configured cron
// expression. It complements the authenticated HTTP trigger; both
// paths share the conditional status transitions, so running them
// together is safe.
type DispatchScheduler struct {
	dispatcher *Dispatcher
	log        *zap.Logger
	spec       string
	scheduler  *cron.Cron
}

func NewDispatchScheduler(cfg *config.Config, dispatcher *Dispatcher, log *zap.Logger) *DispatchScheduler {
	return &DispatchScheduler{
		dispatcher: dispatcher,
		log:        log,
		spec:       cfg.DispatchCron,
	}
}

func (s *DispatchScheduler) Start() error {
	if _, err := cron.ParseStandard(s.spec); err != nil {
		return fmt.Errorf("invalid dispatch cron expression %q: %w", s.spec, err)
	}

	s.scheduler = cron.New()
	_, err := s.scheduler.AddFunc(s.spec, func() {
		summary, err := s.dispatcher.ProcessDue(context.Background())
		if err != nil {
			s.log.Error("scheduled dispatch sweep failed", zap.Error(err))
			return
		}
		if summary.Attempted > 0 {
			s.log.Info("scheduled dispatch sweep finished",
				zap.Int("sent", summary.Sent),
				zap.Int("failed", summary.Failed),
				zap.Int("skipped", summary.Skipped))
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.Start()
	s.log.Info("dispatch scheduler started", zap.String("spec", s.spec))
	return nil
}

func (s *DispatchScheduler) Stop() error {
	if s.scheduler != nil {
		ctx := s.scheduler.Stop()
		<-ctx.Done()
	}
	s.log.Info("dispatch scheduler stopped")
	return nil
}
