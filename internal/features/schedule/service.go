package schedule

import (
	"context"
	"fmt"
	"strings"
	"time"

	common_models "inteldesk/internal/common/models"
	"inteldesk/internal/config"
	"inteldesk/internal/features/advisory"
	"inteldesk/internal/features/audit"
	"inteldesk/internal/features/recipient"
)

// ScheduleRequest carries the mutable fields of a scheduled email.
// ScheduledAt accepts RFC3339 or a bare "2006-01-02T15:04" local stamp
// interpreted in the configured timezone.
type ScheduleRequest struct {
	AdvisoryID    string   `json:"advisory_id"`
	To            []string `json:"to"`
	Cc            []string `json:"cc"`
	Bcc           []string `json:"bcc"`
	Subject       string   `json:"subject"`
	CustomMessage string   `json:"custom_message"`
	ScheduledAt   string   `json:"scheduled_at"`
	BulkMode      bool     `json:"bulk_mode"`
}

type ScheduleService interface {
	Create(ctx context.Context, principal common_models.Principal, req *ScheduleRequest) (*ScheduledEmail, error)
	Update(ctx context.Context, principal common_models.Principal, id string, req *ScheduleRequest) (*ScheduledEmail, error)
	Cancel(ctx context.Context, principal common_models.Principal, id string) error
	SendNow(ctx context.Context, principal common_models.Principal, id string) (*DispatchDetail, error)
	Get(ctx context.Context, id string) (*ScheduledEmail, error)
	ListByStatus(ctx context.Context, status string) ([]ScheduledEmail, error)
	Delete(ctx context.Context, principal common_models.Principal, id string) error
}

type ScheduleServiceImpl struct {
	repo       ScheduleRepository
	advisories advisory.AdvisoryService
	dispatcher *Dispatcher
	auditor    audit.AuditService
	loc        *time.Location
	neutralTo  string
}

func NewScheduleService(
	cfg *config.Config,
	repo ScheduleRepository,
	advisories advisory.AdvisoryService,
	dispatcher *Dispatcher,
	auditor audit.AuditService,
) (ScheduleService, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	return &ScheduleServiceImpl{
		repo:       repo,
		advisories: advisories,
		dispatcher: dispatcher,
		auditor:    auditor,
		loc:        loc,
		neutralTo:  cfg.MailFrom,
	}, nil
}

// parseScheduledAt accepts RFC3339 first, then a zone-less local stamp
// in the configured location. The result is always UTC.
func (s *ScheduleServiceImpl) parseScheduledAt(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.ParseInLocation("2006-01-02T15:04", raw, s.loc)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func normalizeAddresses(in []string) []string {
	out := make([]string, 0, len(in))
	for _, addr := range in {
		addr = strings.ToLower(strings.TrimSpace(addr))
		if addr != "" {
			out = append(out, addr)
		}
	}
	return out
}

// build validates req and materializes a record from it. ScheduledAt
// must be strictly in the future at validation time.
func (s *ScheduleServiceImpl) build(ctx context.Context, req *ScheduleRequest) (*ScheduledEmail, error) {
	var issues []string

	to := normalizeAddresses(req.To)
	cc := normalizeAddresses(req.Cc)
	bcc := normalizeAddresses(req.Bcc)

	if req.BulkMode && len(to) == 0 {
		// Bulk sends address the sender itself; recipients ride in bcc.
		to = []string{s.neutralTo}
	}

	if len(to) == 0 {
		issues = append(issues, "to must contain at least one recipient")
	}
	for _, addr := range append(append(append([]string{}, to...), cc...), bcc...) {
		if !recipient.IsValidAddress(addr) {
			issues = append(issues, "invalid email address: "+addr)
		}
	}

	if req.AdvisoryID == "" {
		issues = append(issues, "advisory_id is required")
	}

	var scheduledAt time.Time
	if req.ScheduledAt == "" {
		issues = append(issues, "scheduled_at is required")
	} else {
		t, err := s.parseScheduledAt(req.ScheduledAt)
		if err != nil {
			issues = append(issues, "scheduled_at is not a valid timestamp")
		} else if !t.After(time.Now().UTC()) {
			issues = append(issues, "scheduled_at must be in the future")
		} else {
			scheduledAt = t
		}
	}

	subject := strings.TrimSpace(req.Subject)

	var adv *advisory.Advisory
	if req.AdvisoryID != "" {
		var err error
		adv, err = s.advisories.GetAdvisory(ctx, req.AdvisoryID)
		if err != nil {
			return nil, fmt.Errorf("failed to load advisory: %w", err)
		}
		if adv == nil {
			issues = append(issues, "advisory not found: "+req.AdvisoryID)
		}
	}
	if subject == "" && adv != nil {
		subject = DefaultSubject(adv)
	}
	if subject == "" {
		issues = append(issues, "subject must not be empty")
	}

	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}

	return &ScheduledEmail{
		AdvisoryID:    req.AdvisoryID,
		To:            to,
		Cc:            cc,
		Bcc:           bcc,
		Subject:       subject,
		CustomMessage: req.CustomMessage,
		ScheduledAt:   scheduledAt,
		BulkMode:      req.BulkMode,
	}, nil
}

func (s *ScheduleServiceImpl) Create(ctx context.Context, principal common_models.Principal, req *ScheduleRequest) (*ScheduledEmail, error) {
	email, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}
	email.CreatedBy = principal.UserID

	if err := s.repo.Create(ctx, email); err != nil {
		return nil, fmt.Errorf("failed to create scheduled email: %w", err)
	}

	s.auditor.LogAction(principal.UserID, audit.ActionEmailScheduled, "scheduled_email", email.ID.Hex(),
		fmt.Sprintf("scheduled for %s, %d recipients", email.ScheduledAt.Format(time.RFC3339), len(email.To)+len(email.Cc)+len(email.Bcc)))

	return email, nil
}

// Update replaces the mutable fields of a pending record and
// re-validates them. Records that already left pending are rejected.
func (s *ScheduleServiceImpl) Update(ctx context.Context, principal common_models.Principal, id string, req *ScheduleRequest) (*ScheduledEmail, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}
	if existing.Status != StatusPending {
		return nil, ErrNotEditable
	}

	email, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}
	email.ID = existing.ID

	ok, err := s.repo.ReplacePending(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to update scheduled email: %w", err)
	}
	if !ok {
		// Lost a race with the dispatcher between read and write.
		return nil, ErrNotEditable
	}

	s.auditor.LogAction(principal.UserID, audit.ActionEmailUpdated, "scheduled_email", id, "")

	return s.repo.GetByID(ctx, id)
}

func (s *ScheduleServiceImpl) Cancel(ctx context.Context, principal common_models.Principal, id string) error {
	ok, err := s.repo.CancelPending(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		existing, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrNotFound
		}
		return ErrNotEditable
	}

	s.auditor.LogAction(principal.UserID, audit.ActionEmailCancelled, "scheduled_email", id, "")
	return nil
}

// SendNow delivers a pending record immediately, skipping the time
// check but not the pending one.
func (s *ScheduleServiceImpl) SendNow(ctx context.Context, principal common_models.Principal, id string) (*DispatchDetail, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}
	if existing.Status != StatusPending {
		return nil, ErrNotEditable
	}

	detail := s.dispatcher.Deliver(ctx, existing)
	if detail.Status == StatusSent {
		s.auditor.LogAction(principal.UserID, audit.ActionEmailSent, "scheduled_email", id, "sent manually")
	}
	return &detail, nil
}

func (s *ScheduleServiceImpl) Get(ctx context.Context, id string) (*ScheduledEmail, error) {
	email, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if email == nil {
		return nil, ErrNotFound
	}
	return email, nil
}

func (s *ScheduleServiceImpl) ListByStatus(ctx context.Context, status string) ([]ScheduledEmail, error) {
	var filter *Status
	if status != "" {
		st := Status(status)
		if !st.Valid() {
			return nil, &ValidationError{Issues: []string{"unknown status: " + status}}
		}
		filter = &st
	}
	return s.repo.List(ctx, filter)
}

func (s *ScheduleServiceImpl) Delete(ctx context.Context, principal common_models.Principal, id string) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.auditor.LogAction(principal.UserID, audit.ActionEmailDeleted, "scheduled_email", id, "")
	return nil
}
