package tracking

import (
	"context"
	"time"

	"inteldesk/internal/features/schedule"

	"go.uber.org/zap"
)

// Event carries the request-side details of one open or click hit.
type Event struct {
	TrackingID string
	Type       EventType
	LinkID     string
	TargetURL  string
	IP         string
	UserAgent  string
}

type TrackingService interface {
	// RegisterSend creates the tracking record once delivery succeeded.
	RegisterSend(ctx context.Context, trackingID, emailID, subject string, recipients int) error

	// LogEvent records one open or click. Unknown tracking ids are a
	// silent no-op; the endpoints must never error at the recipient.
	LogEvent(ctx context.Context, event *Event) error

	GetRecord(ctx context.Context, trackingID string) (*EmailTracking, error)
	ListRecords(ctx context.Context, limit int64) ([]EmailTracking, error)
	ListEvents(ctx context.Context, trackingID string, limit int64) ([]TrackingEvent, error)
	Stats(ctx context.Context) (*TrackingStats, error)
}

type TrackingServiceImpl struct {
	repo         TrackingRepository
	scheduleRepo schedule.ScheduleRepository
	hub          *Hub
	log          *zap.Logger
}

func NewTrackingService(repo TrackingRepository, scheduleRepo schedule.ScheduleRepository, hub *Hub, log *zap.Logger) TrackingService {
	return &TrackingServiceImpl{
		repo:         repo,
		scheduleRepo: scheduleRepo,
		hub:          hub,
		log:          log,
	}
}

func (s *TrackingServiceImpl) RegisterSend(ctx context.Context, trackingID, emailID, subject string, recipients int) error {
	return s.repo.CreateRecord(ctx, &EmailTracking{
		TrackingID: trackingID,
		EmailID:    emailID,
		Subject:    subject,
		Recipients: recipients,
		SentAt:     time.Now().UTC(),
	})
}

func (s *TrackingServiceImpl) LogEvent(ctx context.Context, event *Event) error {
	now := time.Now().UTC()

	var (
		known bool
		err   error
	)
	switch event.Type {
	case EventOpen:
		known, err = s.repo.RecordOpen(ctx, event.TrackingID, now)
	case EventClick:
		known, err = s.repo.RecordClick(ctx, event.TrackingID)
	default:
		return nil
	}
	if err != nil {
		return err
	}
	if !known {
		// Stale or forged tracking id; nothing to record.
		s.log.Debug("event for unknown tracking id", zap.String("tracking_id", event.TrackingID))
		return nil
	}

	if err := s.repo.InsertEvent(ctx, &TrackingEvent{
		TrackingID: event.TrackingID,
		Type:       event.Type,
		LinkID:     event.LinkID,
		TargetURL:  event.TargetURL,
		IP:         event.IP,
		UserAgent:  event.UserAgent,
	}); err != nil {
		s.log.Warn("failed to insert tracking event", zap.Error(err))
	}

	// Mirror the quick-access fields on the scheduled email itself.
	switch event.Type {
	case EventOpen:
		if err := s.scheduleRepo.MarkOpened(ctx, event.TrackingID, now); err != nil {
			s.log.Warn("failed to mark scheduled email opened", zap.Error(err))
		}
	case EventClick:
		if err := s.scheduleRepo.IncrementClicks(ctx, event.TrackingID); err != nil {
			s.log.Warn("failed to bump scheduled email clicks", zap.Error(err))
		}
	}

	s.hub.Broadcast(map[string]interface{}{
		"tracking_id": event.TrackingID,
		"type":        event.Type,
		"link_id":     event.LinkID,
		"at":          now.Format(time.RFC3339),
	})

	return nil
}

func (s *TrackingServiceImpl) GetRecord(ctx context.Context, trackingID string) (*EmailTracking, error) {
	return s.repo.GetByTrackingID(ctx, trackingID)
}

func (s *TrackingServiceImpl) ListRecords(ctx context.Context, limit int64) ([]EmailTracking, error) {
	return s.repo.ListRecords(ctx, limit)
}

func (s *TrackingServiceImpl) ListEvents(ctx context.Context, trackingID string, limit int64) ([]TrackingEvent, error) {
	return s.repo.ListEvents(ctx, trackingID, limit)
}

func (s *TrackingServiceImpl) Stats(ctx context.Context) (*TrackingStats, error) {
	return s.repo.Stats(ctx)
}
