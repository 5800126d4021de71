package schedule

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	common_models "inteldesk/internal/common/models"
	"inteldesk/internal/config"
	"inteldesk/internal/features/advisory"
	"inteldesk/internal/features/audit"
	"inteldesk/internal/mail"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// fakeScheduleRepo mimics the conditional status transitions of the
// Mongo implementation in memory.
type fakeScheduleRepo struct {
	mu     sync.Mutex
	emails map[string]*ScheduledEmail
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{emails: map[string]*ScheduledEmail{}}
}

func (f *fakeScheduleRepo) Create(ctx context.Context, email *ScheduledEmail) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	email.ID = primitive.NewObjectID()
	email.Status = StatusPending
	email.CreatedAt = time.Now().UTC()
	email.UpdatedAt = email.CreatedAt
	cp := *email
	f.emails[email.ID.Hex()] = &cp
	return nil
}

func (f *fakeScheduleRepo) GetByID(ctx context.Context, id string) (*ScheduledEmail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e, ok := f.emails[id]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, nil
}

func (f *fakeScheduleRepo) GetByTrackingID(ctx context.Context, trackingID string) (*ScheduledEmail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.emails {
		if e.TrackingID == trackingID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeScheduleRepo) List(ctx context.Context, status *Status) ([]ScheduledEmail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []ScheduledEmail{}
	for _, e := range f.emails {
		if status == nil || e.Status == *status {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeScheduleRepo) FindDue(ctx context.Context, now time.Time) ([]ScheduledEmail, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []ScheduledEmail{}
	for _, e := range f.emails {
		if e.Status == StatusPending && !e.ScheduledAt.After(now) {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeScheduleRepo) ReplacePending(ctx context.Context, email *ScheduledEmail) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.emails[email.ID.Hex()]
	if !ok || e.Status != StatusPending {
		return false, nil
	}
	e.To, e.Cc, e.Bcc = email.To, email.Cc, email.Bcc
	e.Subject = email.Subject
	e.CustomMessage = email.CustomMessage
	e.ScheduledAt = email.ScheduledAt
	e.BulkMode = email.BulkMode
	e.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (f *fakeScheduleRepo) CancelPending(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.emails[id]
	if !ok || e.Status != StatusPending {
		return false, nil
	}
	e.Status = StatusCancelled
	return true, nil
}

func (f *fakeScheduleRepo) MarkSent(ctx context.Context, id string, sentAt time.Time, trackingID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.emails[id]
	if !ok || e.Status != StatusPending {
		return false, nil
	}
	e.Status = StatusSent
	e.SentAt = &sentAt
	e.TrackingID = trackingID
	return true, nil
}

func (f *fakeScheduleRepo) MarkFailed(ctx context.Context, id string, errMsg string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.emails[id]
	if !ok || e.Status != StatusPending {
		return false, nil
	}
	e.Status = StatusFailed
	e.ErrorMessage = errMsg
	e.RetryCount++
	return true, nil
}

func (f *fakeScheduleRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.emails, id)
	return nil
}

func (f *fakeScheduleRepo) MarkOpened(ctx context.Context, trackingID string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.emails {
		if e.TrackingID == trackingID {
			if !e.IsOpened {
				e.IsOpened = true
				e.OpenedAt = &at
			}
			e.OpenCount++
		}
	}
	return nil
}

func (f *fakeScheduleRepo) IncrementClicks(ctx context.Context, trackingID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.emails {
		if e.TrackingID == trackingID {
			e.ClickCount++
		}
	}
	return nil
}

func (f *fakeScheduleRepo) EnsureIndexes(ctx context.Context) error { return nil }

type fakeAdvisoryService struct {
	advisories map[string]*advisory.Advisory
}

func (f *fakeAdvisoryService) GetAdvisory(ctx context.Context, id string) (*advisory.Advisory, error) {
	return f.advisories[id], nil
}
func (f *fakeAdvisoryService) ListAdvisories(ctx context.Context, limit int64) ([]advisory.Advisory, error) {
	return nil, nil
}
func (f *fakeAdvisoryService) UpdateAdvisory(ctx context.Context, adv *advisory.Advisory) error {
	return nil
}

type fakeTransport struct {
	mu        sync.Mutex
	sent      []*mail.Envelope
	failAddrs map[string]bool
}

func (f *fakeTransport) Send(ctx context.Context, env *mail.Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, to := range env.To {
		if f.failAddrs[to] {
			return errors.New("smtp: 550 mailbox unavailable")
		}
	}
	f.sent = append(f.sent, env)
	return nil
}
func (f *fakeTransport) Name() string { return "fake" }

func (f *fakeTransport) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeAuditService struct {
	mu      sync.Mutex
	actions []audit.Action
}

func (f *fakeAuditService) LogAction(actor string, action audit.Action, entityType, entityID, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.actions = append(f.actions, action)
}
func (f *fakeAuditService) List(ctx context.Context, limit int64) ([]audit.AuditLog, error) {
	return nil, nil
}

type fakeRegistrar struct {
	mu  sync.Mutex
	ids []string
}

func (f *fakeRegistrar) RegisterSend(ctx context.Context, trackingID, emailID, subject string, recipients int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ids = append(f.ids, trackingID)
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Timezone:            "UTC",
		MailFrom:            "alerts@inteldesk.local",
		BaseURL:             "https://mail.example",
		DispatchConcurrency: 4,
		SendTimeoutSeconds:  5,
	}
}

type serviceFixture struct {
	repo      *fakeScheduleRepo
	transport *fakeTransport
	auditor   *fakeAuditService
	service   ScheduleService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	repo := newFakeScheduleRepo()
	transport := &fakeTransport{failAddrs: map[string]bool{}}
	auditor := &fakeAuditService{}
	advSvc := &fakeAdvisoryService{advisories: map[string]*advisory.Advisory{
		"adv-1": {Title: "Test Advisory"},
	}}

	cfg := testConfig()
	dispatcher := NewDispatcher(cfg, repo, advSvc, transport, &fakeRegistrar{}, zap.NewNop())

	svc, err := NewScheduleService(cfg, repo, advSvc, dispatcher, auditor)
	if err != nil {
		t.Fatalf("NewScheduleService: %v", err)
	}
	return &serviceFixture{repo: repo, transport: transport, auditor: auditor, service: svc}
}

var actor = common_models.Principal{UserID: "analyst-1", Role: common_models.RoleAnalyst}

func validRequest() *ScheduleRequest {
	return &ScheduleRequest{
		AdvisoryID:  "adv-1",
		To:          []string{"soc@client.example"},
		Subject:     "Heads up",
		ScheduledAt: time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
	}
}

func TestCreateScheduledEmail(t *testing.T) {
	fx := newServiceFixture(t)

	email, err := fx.service.Create(context.Background(), actor, validRequest())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if email.Status != StatusPending {
		t.Errorf("Status = %s, want pending", email.Status)
	}
	if email.CreatedBy != "analyst-1" {
		t.Errorf("CreatedBy = %s", email.CreatedBy)
	}
}

func TestCreateValidation(t *testing.T) {
	fx := newServiceFixture(t)

	tests := []struct {
		name   string
		mutate func(*ScheduleRequest)
		issue  string
	}{
		{
			name:   "empty to",
			mutate: func(r *ScheduleRequest) { r.To = nil },
			issue:  "at least one recipient",
		},
		{
			name:   "invalid address",
			mutate: func(r *ScheduleRequest) { r.To = []string{"nope"} },
			issue:  "invalid email address",
		},
		{
			name: "past schedule time",
			mutate: func(r *ScheduleRequest) {
				r.ScheduledAt = time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
			},
			issue: "must be in the future",
		},
		{
			name:   "garbage timestamp",
			mutate: func(r *ScheduleRequest) { r.ScheduledAt = "tomorrow-ish" },
			issue:  "not a valid timestamp",
		},
		{
			name:   "unknown advisory",
			mutate: func(r *ScheduleRequest) { r.AdvisoryID = "adv-missing" },
			issue:  "advisory not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			_, err := fx.service.Create(context.Background(), actor, req)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			found := false
			for _, issue := range vErr.Issues {
				if strings.Contains(issue, tt.issue) {
					found = true
				}
			}
			if !found {
				t.Errorf("issues %v missing %q", vErr.Issues, tt.issue)
			}
		})
	}
}

func TestCreateDefaultsSubjectFromAdvisory(t *testing.T) {
	fx := newServiceFixture(t)

	req := validRequest()
	req.Subject = "   "
	email, err := fx.service.Create(context.Background(), actor, req)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if email.Subject != "THREAT ALERT: Test Advisory" {
		t.Errorf("Subject = %q", email.Subject)
	}
}

func TestCreateBulkModeUsesNeutralTo(t *testing.T) {
	fx := newServiceFixture(t)

	req := validRequest()
	req.To = nil
	req.Bcc = []string{"hidden1@x.com", "hidden2@x.com"}
	req.BulkMode = true

	email, err := fx.service.Create(context.Background(), actor, req)
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if len(email.To) != 1 || email.To[0] != "alerts@inteldesk.local" {
		t.Errorf("To = %v, want the neutral sender address", email.To)
	}
}

func TestUpdateOnlyPending(t *testing.T) {
	fx := newServiceFixture(t)
	ctx := context.Background()

	email, err := fx.service.Create(ctx, actor, validRequest())
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	req := validRequest()
	req.Subject = "Updated subject"
	updated, err := fx.service.Update(ctx, actor, email.ID.Hex(), req)
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Subject != "Updated subject" {
		t.Errorf("Subject = %q", updated.Subject)
	}

	// Once sent, edits are rejected.
	if ok, _ := fx.repo.MarkSent(ctx, email.ID.Hex(), time.Now(), "t-1"); !ok {
		t.Fatal("MarkSent failed")
	}
	if _, err := fx.service.Update(ctx, actor, email.ID.Hex(), req); !errors.Is(err, ErrNotEditable) {
		t.Errorf("Update on sent record = %v, want ErrNotEditable", err)
	}
}

func TestCancel(t *testing.T) {
	fx := newServiceFixture(t)
	ctx := context.Background()

	email, _ := fx.service.Create(ctx, actor, validRequest())

	if err := fx.service.Cancel(ctx, actor, email.ID.Hex()); err != nil {
		t.Fatalf("Cancel returned error: %v", err)
	}

	got, _ := fx.service.Get(ctx, email.ID.Hex())
	if got.Status != StatusCancelled {
		t.Errorf("Status = %s, want cancelled", got.Status)
	}

	// Second cancel hits a non-pending record.
	if err := fx.service.Cancel(ctx, actor, email.ID.Hex()); !errors.Is(err, ErrNotEditable) {
		t.Errorf("second Cancel = %v, want ErrNotEditable", err)
	}

	if err := fx.service.Cancel(ctx, actor, primitive.NewObjectID().Hex()); !errors.Is(err, ErrNotFound) {
		t.Errorf("Cancel of unknown id = %v, want ErrNotFound", err)
	}
}

func TestSendNowIgnoresFutureScheduleTime(t *testing.T) {
	fx := newServiceFixture(t)
	ctx := context.Background()

	req := validRequest()
	req.ScheduledAt = time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)
	email, _ := fx.service.Create(ctx, actor, req)

	detail, err := fx.service.SendNow(ctx, actor, email.ID.Hex())
	if err != nil {
		t.Fatalf("SendNow returned error: %v", err)
	}
	if detail.Status != StatusSent {
		t.Errorf("detail.Status = %s, want sent", detail.Status)
	}
	if fx.transport.sentCount() != 1 {
		t.Errorf("sent = %d, want 1", fx.transport.sentCount())
	}

	got, _ := fx.service.Get(ctx, email.ID.Hex())
	if got.Status != StatusSent || got.TrackingID == "" {
		t.Errorf("record after SendNow = status %s, tracking %q", got.Status, got.TrackingID)
	}

	// A sent record cannot be sent again.
	if _, err := fx.service.SendNow(ctx, actor, email.ID.Hex()); !errors.Is(err, ErrNotEditable) {
		t.Errorf("second SendNow = %v, want ErrNotEditable", err)
	}
}

func TestListByStatus(t *testing.T) {
	fx := newServiceFixture(t)
	ctx := context.Background()

	a, _ := fx.service.Create(ctx, actor, validRequest())
	fx.service.Create(ctx, actor, validRequest())
	fx.service.Cancel(ctx, actor, a.ID.Hex())

	pending, err := fx.service.ListByStatus(ctx, "pending")
	if err != nil {
		t.Fatalf("ListByStatus returned error: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("pending = %d, want 1", len(pending))
	}

	all, _ := fx.service.ListByStatus(ctx, "")
	if len(all) != 2 {
		t.Errorf("all = %d, want 2", len(all))
	}

	if _, err := fx.service.ListByStatus(ctx, "bogus"); err == nil {
		t.Error("expected error for unknown status filter")
	}
}
