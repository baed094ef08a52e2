package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
	errs "github.com/amirhossein-jamali/charging-settlement/internal/domain/error"
	coreport "github.com/amirhossein-jamali/charging-settlement/internal/domain/port/core"
	"github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/adapter/model"
)

// OutboxRepository implements OutboxRepository using GORM
type OutboxRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewOutboxRepository creates a new OutboxRepository instance
func NewOutboxRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *OutboxRepository {
	return &OutboxRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// entityToModel converts an outbox message entity to a database model
func (r *OutboxRepository) entityToModel(message *entity.OutboxMessage) model.OutboxMessage {
	return model.OutboxMessage{
		MessageID:     message.MessageID,
		BusinessType:  message.BusinessType,
		BusinessID:    message.BusinessID,
		Payload:       message.Payload,
		Status:        string(message.Status),
		RetryCount:    message.RetryCount,
		NextRetryTime: message.NextRetryTime,
		CreatedAt:     message.CreatedAt,
		UpdatedAt:     message.UpdatedAt,
	}
}

// modelToEntity converts an outbox message model to an entity
func (r *OutboxRepository) modelToEntity(m *model.OutboxMessage) *entity.OutboxMessage {
	return &entity.OutboxMessage{
		MessageID:     m.MessageID,
		BusinessType:  m.BusinessType,
		BusinessID:    m.BusinessID,
		Payload:       m.Payload,
		Status:        entity.OutboxStatus(m.Status),
		RetryCount:    m.RetryCount,
		NextRetryTime: m.NextRetryTime,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// Create inserts a new PENDING row
func (r *OutboxRepository) Create(ctx context.Context, message *entity.OutboxMessage) error {
	messageModel := r.entityToModel(message)

	result := r.db.WithContext(ctx).Create(&messageModel)
	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			r.logger.Warn("Outbox row already exists for business id", map[string]any{
				"business_id": message.BusinessID,
			})
			return errs.ErrDuplicateKey
		}
		r.logger.Error("Failed to create outbox message", map[string]any{
			"message_id":  message.MessageID,
			"business_id": message.BusinessID,
			"error":       result.Error.Error(),
		})
		return r.errorClassifier.wrapStoreError(result.Error)
	}

	return nil
}

// ExistsForBusinessID reports whether a row exists for the business id
func (r *OutboxRepository) ExistsForBusinessID(ctx context.Context, businessID string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.OutboxMessage{}).
		Where("business_id = ?", businessID).
		Count(&count)

	if result.Error != nil {
		r.logger.Error("Failed to check outbox row existence", map[string]any{
			"business_id": businessID,
			"error":       result.Error.Error(),
		})
		return false, r.errorClassifier.wrapStoreError(result.Error)
	}

	return count > 0, nil
}

// claimLease is how long a claimed row stays invisible to other claimers.
// It must exceed the worst-case publish time for one batch; a relay that
// crashes mid-batch surfaces its unfinished rows again once it expires.
const claimLease = time.Minute

// ClaimPending claims up to limit PENDING rows that are due for delivery.
// The lock-and-skip read runs in its own short transaction so concurrent
// relay instances partition the backlog instead of contending on it. The
// row locks end when that transaction commits, so the claim also pushes
// next_retry_time past the lease window; until the worker resolves the row
// with MarkSent or MarkRetry, no other instance sees it as due.
func (r *OutboxRepository) ClaimPending(ctx context.Context, limit, maxRetry int, now time.Time) ([]*entity.OutboxMessage, error) {
	var rows []model.OutboxMessage

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? AND retry_count < ? AND next_retry_time <= ?",
				string(entity.OutboxPending), maxRetry, now).
			Order("next_retry_time").
			Limit(limit).
			Find(&rows).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}

		ids := make([]string, len(rows))
		for i := range rows {
			ids[i] = rows[i].MessageID
		}
		return tx.Model(&model.OutboxMessage{}).
			Where("message_id IN ?", ids).
			Updates(map[string]interface{}{
				"next_retry_time": now.Add(claimLease),
				"updated_at":      now,
			}).Error
	})
	if err != nil {
		r.logger.Error("Failed to claim pending outbox rows", map[string]any{
			"error": err.Error(),
		})
		return nil, r.errorClassifier.wrapStoreError(err)
	}

	messages := make([]*entity.OutboxMessage, len(rows))
	for i := range rows {
		messages[i] = r.modelToEntity(&rows[i])
	}
	return messages, nil
}

// MarkSent transitions a row from PENDING to SENT
func (r *OutboxRepository) MarkSent(ctx context.Context, messageID string) (bool, error) {
	now := r.timeProvider.Now()
	result := r.db.WithContext(ctx).Model(&model.OutboxMessage{}).
		Where("message_id = ? AND status = ?", messageID, string(entity.OutboxPending)).
		Updates(map[string]interface{}{
			"status":     string(entity.OutboxSent),
			"updated_at": now,
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark outbox message sent", map[string]any{
			"message_id": messageID,
			"error":      result.Error.Error(),
		})
		return false, r.errorClassifier.wrapStoreError(result.Error)
	}

	return result.RowsAffected > 0, nil
}

// MarkRetry records a failed publish attempt
func (r *OutboxRepository) MarkRetry(ctx context.Context, messageID string, retryCount int, failed bool, nextRetry time.Time) error {
	now := r.timeProvider.Now()
	status := entity.OutboxPending
	if failed {
		status = entity.OutboxFailed
	}

	result := r.db.WithContext(ctx).Model(&model.OutboxMessage{}).
		Where("message_id = ?", messageID).
		Updates(map[string]interface{}{
			"status":          string(status),
			"retry_count":     retryCount,
			"next_retry_time": nextRetry,
			"updated_at":      now,
		})

	if result.Error != nil {
		r.logger.Error("Failed to record outbox retry", map[string]any{
			"message_id": messageID,
			"error":      result.Error.Error(),
		})
		return r.errorClassifier.wrapStoreError(result.Error)
	}

	return nil
}

// MarkProcessed transitions the row for a business id to PROCESSED
func (r *OutboxRepository) MarkProcessed(ctx context.Context, businessID string) error {
	now := r.timeProvider.Now()
	result := r.db.WithContext(ctx).Model(&model.OutboxMessage{}).
		Where("business_id = ?", businessID).
		Updates(map[string]interface{}{
			"status":     string(entity.OutboxProcessed),
			"updated_at": now,
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark outbox message processed", map[string]any{
			"business_id": businessID,
			"error":       result.Error.Error(),
		})
		return r.errorClassifier.wrapStoreError(result.Error)
	}

	return nil
}
