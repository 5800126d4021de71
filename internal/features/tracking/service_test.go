package tracking

import (
	"context"
	"sync"
	"testing"
	"time"

	"inteldesk/internal/features/schedule"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeTrackingRepo struct {
	mu      sync.Mutex
	records map[string]*EmailTracking
	events  []TrackingEvent
}

func newFakeTrackingRepo() *fakeTrackingRepo {
	return &fakeTrackingRepo{records: map[string]*EmailTracking{}}
}

func (f *fakeTrackingRepo) CreateRecord(ctx context.Context, rec *EmailTracking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec.ID = primitive.NewObjectID()
	cp := *rec
	f.records[rec.TrackingID] = &cp
	return nil
}

func (f *fakeTrackingRepo) GetByTrackingID(ctx context.Context, trackingID string) (*EmailTracking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.records[trackingID]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeTrackingRepo) ListRecords(ctx context.Context, limit int64) ([]EmailTracking, error) {
	return nil, nil
}

func (f *fakeTrackingRepo) RecordOpen(ctx context.Context, trackingID string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[trackingID]
	if !ok {
		return false, nil
	}
	if r.FirstOpenedAt == nil {
		first := at
		r.FirstOpenedAt = &first
	}
	last := at
	r.LastOpenedAt = &last
	r.OpenCount++
	return true, nil
}

func (f *fakeTrackingRepo) RecordClick(ctx context.Context, trackingID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[trackingID]
	if !ok {
		return false, nil
	}
	r.ClickCount++
	return true, nil
}

func (f *fakeTrackingRepo) InsertEvent(ctx context.Context, event *TrackingEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *event)
	return nil
}

func (f *fakeTrackingRepo) ListEvents(ctx context.Context, trackingID string, limit int64) ([]TrackingEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []TrackingEvent{}
	for _, e := range f.events {
		if e.TrackingID == trackingID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeTrackingRepo) Stats(ctx context.Context) (*TrackingStats, error) {
	return &TrackingStats{}, nil
}

func (f *fakeTrackingRepo) EnsureIndexes(ctx context.Context) error { return nil }

// spyScheduleRepo records only the quick-field mirroring calls.
type spyScheduleRepo struct {
	mu      sync.Mutex
	opened  []string
	clicked []string
}

func (s *spyScheduleRepo) Create(ctx context.Context, e *schedule.ScheduledEmail) error { return nil }
func (s *spyScheduleRepo) GetByID(ctx context.Context, id string) (*schedule.ScheduledEmail, error) {
	return nil, nil
}
func (s *spyScheduleRepo) GetByTrackingID(ctx context.Context, id string) (*schedule.ScheduledEmail, error) {
	return nil, nil
}
func (s *spyScheduleRepo) List(ctx context.Context, st *schedule.Status) ([]schedule.ScheduledEmail, error) {
	return nil, nil
}
func (s *spyScheduleRepo) FindDue(ctx context.Context, now time.Time) ([]schedule.ScheduledEmail, error) {
	return nil, nil
}
func (s *spyScheduleRepo) ReplacePending(ctx context.Context, e *schedule.ScheduledEmail) (bool, error) {
	return false, nil
}
func (s *spyScheduleRepo) CancelPending(ctx context.Context, id string) (bool, error) {
	return false, nil
}
func (s *spyScheduleRepo) MarkSent(ctx context.Context, id string, at time.Time, tid string) (bool, error) {
	return false, nil
}
func (s *spyScheduleRepo) MarkFailed(ctx context.Context, id string, msg string) (bool, error) {
	return false, nil
}
func (s *spyScheduleRepo) Delete(ctx context.Context, id string) error { return nil }
func (s *spyScheduleRepo) MarkOpened(ctx context.Context, trackingID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = append(s.opened, trackingID)
	return nil
}
func (s *spyScheduleRepo) IncrementClicks(ctx context.Context, trackingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clicked = append(s.clicked, trackingID)
	return nil
}
func (s *spyScheduleRepo) EnsureIndexes(ctx context.Context) error { return nil }

func newTrackingFixture(t *testing.T) (TrackingService, *fakeTrackingRepo, *spyScheduleRepo) {
	t.Helper()
	repo := newFakeTrackingRepo()
	spy := &spyScheduleRepo{}
	svc := NewTrackingService(repo, spy, NewHub(zap.NewNop()), zap.NewNop())
	return svc, repo, spy
}

func TestLogEventUnknownTrackingIDIsNoop(t *testing.T) {
	svc, repo, spy := newTrackingFixture(t)

	err := svc.LogEvent(context.Background(), &Event{TrackingID: "ghost", Type: EventOpen})
	if err != nil {
		t.Fatalf("LogEvent returned error: %v", err)
	}

	repo.mu.Lock()
	events := len(repo.events)
	repo.mu.Unlock()
	if events != 0 {
		t.Errorf("events = %d, want none for unknown tracking id", events)
	}
	if len(spy.opened) != 0 {
		t.Error("unknown tracking id must not touch the scheduled email")
	}
}

func TestLogEventOpens(t *testing.T) {
	svc, repo, spy := newTrackingFixture(t)
	ctx := context.Background()

	if err := svc.RegisterSend(ctx, "t-1", "email-1", "Alert", 3); err != nil {
		t.Fatalf("RegisterSend returned error: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := svc.LogEvent(ctx, &Event{TrackingID: "t-1", Type: EventOpen, IP: "198.51.100.7"}); err != nil {
			t.Fatalf("LogEvent returned error: %v", err)
		}
	}

	rec, _ := repo.GetByTrackingID(ctx, "t-1")
	if rec.OpenCount != 3 {
		t.Errorf("OpenCount = %d, want 3", rec.OpenCount)
	}
	if rec.FirstOpenedAt == nil {
		t.Error("FirstOpenedAt not set")
	}

	events, _ := repo.ListEvents(ctx, "t-1", 0)
	if len(events) != 3 {
		t.Errorf("events = %d, want 3", len(events))
	}
	if len(spy.opened) != 3 {
		t.Errorf("MarkOpened calls = %d, want 3", len(spy.opened))
	}
}

func TestLogEventClicks(t *testing.T) {
	svc, repo, spy := newTrackingFixture(t)
	ctx := context.Background()

	svc.RegisterSend(ctx, "t-1", "email-1", "Alert", 1)

	err := svc.LogEvent(ctx, &Event{
		TrackingID: "t-1",
		Type:       EventClick,
		LinkID:     "ref-0",
		TargetURL:  "https://vendor.example/advisory",
	})
	if err != nil {
		t.Fatalf("LogEvent returned error: %v", err)
	}

	rec, _ := repo.GetByTrackingID(ctx, "t-1")
	if rec.ClickCount != 1 {
		t.Errorf("ClickCount = %d, want 1", rec.ClickCount)
	}
	if len(spy.clicked) != 1 {
		t.Errorf("IncrementClicks calls = %d, want 1", len(spy.clicked))
	}

	events, _ := repo.ListEvents(ctx, "t-1", 0)
	if len(events) != 1 || events[0].LinkID != "ref-0" {
		t.Errorf("events = %+v", events)
	}
}
