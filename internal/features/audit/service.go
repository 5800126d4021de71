package audit

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type AuditService interface {
	LogAction(actor string, action Action, entityType, entityID, detail string)
	List(ctx context.Context, limit int64) ([]AuditLog, error)
}

type AuditServiceImpl struct {
	repo AuditRepository
	log  *zap.Logger
}

func NewAuditService(repo AuditRepository, log *zap.Logger) AuditService {
	return &AuditServiceImpl{repo: repo, log: log}
}

// LogAction is fire-and-forget: audit failures never fail the action
// being audited.
func (s *AuditServiceImpl) LogAction(actor string, action Action, entityType, entityID, detail string) {
	entry := &AuditLog{
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		Detail:     detail,
		CreatedAt:  time.Now().UTC(),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.repo.Create(ctx, entry); err != nil {
			s.log.Warn("failed to write audit log",
				zap.String("action", string(action)),
				zap.Error(err))
		}
	}()
}

func (s *AuditServiceImpl) List(ctx context.Context, limit int64) ([]AuditLog, error) {
	return s.repo.List(ctx, limit)
}
