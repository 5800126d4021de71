package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"inteldesk/internal/config"
	"inteldesk/internal/features/advisory"
	"inteldesk/internal/mail"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TrackingRegistrar creates the tracking record for a delivered email.
// Implemented by the tracking feature; declared here to keep the
// dependency direction tracking -> schedule.
type TrackingRegistrar interface {
	RegisterSend(ctx context.Context, trackingID, emailID, subject string, recipients int) error
}

// Dispatcher delivers due scheduled emails. Both the in-process cron
// sweep and the send-now action go through Deliver, so a manual send
// and an automatic one behave identically apart from the time check.
type Dispatcher struct {
	repo       ScheduleRepository
	advisories advisory.AdvisoryService
	transport  mail.Transport
	tracker    TrackingRegistrar
	log        *zap.Logger

	baseURL     string
	from        string
	concurrency int
	sendTimeout time.Duration
}

func NewDispatcher(
	cfg *config.Config,
	repo ScheduleRepository,
	advisories advisory.AdvisoryService,
	transport mail.Transport,
	tracker TrackingRegistrar,
	log *zap.Logger,
) *Dispatcher {
	concurrency := cfg.DispatchConcurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Dispatcher{
		repo:        repo,
		advisories:  advisories,
		transport:   transport,
		tracker:     tracker,
		log:         log,
		baseURL:     cfg.BaseURL,
		from:        cfg.MailFrom,
		concurrency: concurrency,
		sendTimeout: time.Duration(cfg.SendTimeoutSeconds) * time.Second,
	}
}

// ProcessDue finds every pending record whose scheduled time has
// passed and attempts delivery for each, with bounded parallelism.
// Records are isolated: one failure never aborts the batch.
func (d *Dispatcher) ProcessDue(ctx context.Context) (*DispatchSummary, error) {
	due, err := d.repo.FindDue(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to query due emails: %w", err)
	}

	summary := &DispatchSummary{Details: []DispatchDetail{}}
	if len(due) == 0 {
		return summary, nil
	}

	d.log.Info("processing due scheduled emails", zap.Int("count", len(due)))

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, d.concurrency)
	)

	for i := range due {
		email := due[i]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			detail := d.deliverIsolated(ctx, &email)

			mu.Lock()
			summary.Attempted++
			switch detail.Status {
			case StatusSent:
				summary.Sent++
			case StatusFailed:
				summary.Failed++
			default:
				summary.Skipped++
			}
			summary.Details = append(summary.Details, detail)
			mu.Unlock()
		}()
	}
	wg.Wait()

	d.log.Info("dispatch batch complete",
		zap.Int("attempted", summary.Attempted),
		zap.Int("sent", summary.Sent),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped))

	return summary, nil
}

// deliverIsolated wraps Deliver so a panic while handling one record
// cannot take down sibling deliveries in the same batch.
func (d *Dispatcher) deliverIsolated(ctx context.Context, email *ScheduledEmail) (detail DispatchDetail) {
	defer func() {
		if r := recover(); r != nil {
			msg := fmt.Sprintf("panic during delivery: %v", r)
			d.log.Error("delivery panicked", zap.String("email_id", email.ID.Hex()), zap.Any("panic", r))
			if ok, err := d.repo.MarkFailed(ctx, email.ID.Hex(), msg); err != nil || !ok {
				d.log.Error("failed to mark panicked record failed", zap.Error(err))
			}
			detail = DispatchDetail{EmailID: email.ID.Hex(), Status: StatusFailed, Error: msg}
		}
	}()
	return d.Deliver(ctx, email)
}

// Deliver composes and sends one record, then transitions its status.
// Transitions are conditional on the record still being pending, so
// overlapping triggers cannot both deliver the same email: the loser
// of the race reports a skip.
func (d *Dispatcher) Deliver(ctx context.Context, email *ScheduledEmail) DispatchDetail {
	id := email.ID.Hex()
	recipients := len(email.To) + len(email.Cc) + len(email.Bcc)

	trackingID := email.TrackingID
	if trackingID == "" {
		trackingID = uuid.NewString()
	}

	adv, err := d.advisories.GetAdvisory(ctx, email.AdvisoryID)
	if err == nil && adv == nil {
		err = fmt.Errorf("advisory %s not found", email.AdvisoryID)
	}
	if err != nil {
		return d.fail(ctx, id, recipients, err)
	}

	env := &mail.Envelope{
		From:     d.from,
		To:       email.To,
		Cc:       email.Cc,
		Bcc:      email.Bcc,
		Subject:  email.Subject,
		HtmlBody: ComposeHTML(adv, email.CustomMessage, trackingID, d.baseURL),
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	if err := d.transport.Send(sendCtx, env); err != nil {
		return d.fail(ctx, id, recipients, err)
	}

	sentAt := time.Now().UTC()
	ok, err := d.repo.MarkSent(ctx, id, sentAt, trackingID)
	if err != nil {
		d.log.Error("failed to mark email sent", zap.String("email_id", id), zap.Error(err))
		return DispatchDetail{EmailID: id, Status: StatusFailed, Recipients: recipients, Error: err.Error()}
	}
	if !ok {
		// Another trigger transitioned the record first.
		d.log.Warn("record no longer pending, skipping status update", zap.String("email_id", id))
		return DispatchDetail{EmailID: id, Status: email.Status, Recipients: recipients}
	}

	if d.tracker != nil {
		if err := d.tracker.RegisterSend(ctx, trackingID, id, email.Subject, recipients); err != nil {
			d.log.Warn("failed to register tracking record", zap.String("tracking_id", trackingID), zap.Error(err))
		}
	}

	d.log.Info("scheduled email sent",
		zap.String("email_id", id),
		zap.String("transport", d.transport.Name()),
		zap.Int("recipients", recipients))

	return DispatchDetail{EmailID: id, Status: StatusSent, Recipients: recipients}
}

func (d *Dispatcher) fail(ctx context.Context, id string, recipients int, cause error) DispatchDetail {
	d.log.Error("delivery failed", zap.String("email_id", id), zap.Error(cause))

	ok, err := d.repo.MarkFailed(ctx, id, cause.Error())
	if err != nil {
		d.log.Error("failed to mark email failed", zap.String("email_id", id), zap.Error(err))
	} else if !ok {
		d.log.Warn("record no longer pending, failure not recorded", zap.String("email_id", id))
	}

	return DispatchDetail{EmailID: id, Status: StatusFailed, Recipients: recipients, Error: cause.Error()}
}
