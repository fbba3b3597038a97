package services

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/iota-uz/taskdesk/modules/core/domain/entities/permission"
	"github.com/iota-uz/taskdesk/modules/logging/domain/entities/activitylog"
	"github.com/iota-uz/taskdesk/pkg/metrics"
)

type Authorizer interface {
	Authorize(ctx context.Context, actorID uint, category permission.Category, minLevel int, targetDeptID *uint) error
}

// AuditService is the audit trail recorder. Write failures are logged and
// swallowed so an otherwise valid mutation never aborts over its audit entry.
type AuditService struct {
	repo  activitylog.Repository
	authz Authorizer
	log   *logrus.Entry
}

func NewAuditService(repo activitylog.Repository, authz Authorizer, log *logrus.Logger) *AuditService {
	return &AuditService{
		repo:  repo,
		authz: authz,
		log:   log.WithField("component", "audit"),
	}
}

func (s *AuditService) Record(ctx context.Context, actorID uint, action, targetType string, targetID uint, meta map[string]any) {
	var payload json.RawMessage
	if meta != nil {
		encoded, err := json.Marshal(meta)
		if err != nil {
			s.log.WithError(err).WithFields(logrus.Fields{
				"action":      action,
				"target_type": targetType,
				"target_id":   targetID,
			}).Error("audit metadata not serializable, recording without it")
		} else {
			payload = encoded
		}
	}

	entry := &activitylog.ActivityLog{
		UserID:     actorID,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   payload,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		metrics.AuditWriteFailures.Inc()
		s.log.WithError(err).WithFields(logrus.Fields{
			"actor_id":    actorID,
			"action":      action,
			"target_type": targetType,
			"target_id":   targetID,
		}).Error("audit write failed")
	}
}

func (s *AuditService) List(ctx context.Context, actorID uint, params *activitylog.FindParams) ([]*activitylog.ActivityLog, int64, error) {
	if err := s.authz.Authorize(ctx, actorID, permission.CategoryActivityLogs, 1, nil); err != nil {
		return nil, 0, err
	}
	if params == nil {
		params = &activitylog.FindParams{}
	}

	logs, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	count, err := s.repo.Count(ctx, params)
	if err != nil {
		return nil, 0, err
	}
	return logs, count, nil
}
