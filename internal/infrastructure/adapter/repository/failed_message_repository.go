package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/charging-settlement/internal/domain/port/core"
	"github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/adapter/model"
)

// FailedMessageRepository implements FailedMessageRepository using GORM
type FailedMessageRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewFailedMessageRepository creates a new FailedMessageRepository instance
func NewFailedMessageRepository(db *gorm.DB, logger coreport.Logger) *FailedMessageRepository {
	return &FailedMessageRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// Create appends one quarantined message record
func (r *FailedMessageRepository) Create(ctx context.Context, record *entity.FailedMessage) error {
	recordModel := model.FailedMessage{
		MessageID: record.MessageID,
		OrderID:   record.OrderID,
		UserID:    record.UserID,
		Points:    record.Points,
		Error:     record.Error,
		CreatedAt: record.CreatedAt,
	}

	result := r.db.WithContext(ctx).Create(&recordModel)
	if result.Error != nil {
		r.logger.Error("Failed to record quarantined message", map[string]any{
			"message_id": record.MessageID,
			"order_id":   record.OrderID,
			"error":      result.Error.Error(),
		})
		return r.errorClassifier.wrapStoreError(result.Error)
	}

	return nil
}
