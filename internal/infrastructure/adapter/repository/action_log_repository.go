package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/charging-settlement/internal/domain/port/core"
	"github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/adapter/model"
)

// ActionLogRepository implements ActionLogRepository using GORM
type ActionLogRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewActionLogRepository creates a new ActionLogRepository instance
func NewActionLogRepository(db *gorm.DB, logger coreport.Logger) *ActionLogRepository {
	return &ActionLogRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// Append records one phase execution
func (r *ActionLogRepository) Append(ctx context.Context, entry *entity.ActionLogEntry) error {
	entryModel := model.ActionLog{
		TxID:        entry.TxID,
		Participant: entry.Participant,
		Phase:       string(entry.Phase),
		Outcome:     string(entry.Outcome),
		Note:        entry.Note,
		CreatedAt:   entry.CreatedAt,
	}

	result := r.db.WithContext(ctx).Create(&entryModel)
	if result.Error != nil {
		r.logger.Error("Failed to append action log entry", map[string]any{
			"tx_id":       entry.TxID,
			"participant": entry.Participant,
			"phase":       entry.Phase,
			"error":       result.Error.Error(),
		})
		return r.errorClassifier.wrapStoreError(result.Error)
	}

	return nil
}

// HasSucceeded reports whether a SUCCESS entry exists for the phase
func (r *ActionLogRepository) HasSucceeded(ctx context.Context, txID, participant string, phase entity.Phase) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.ActionLog{}).
		Where("tx_id = ? AND participant = ? AND phase = ? AND outcome = ?",
			txID, participant, string(phase), string(entity.OutcomeSuccess)).
		Count(&count)

	if result.Error != nil {
		r.logger.Error("Failed to check action log", map[string]any{
			"tx_id":       txID,
			"participant": participant,
			"phase":       phase,
			"error":       result.Error.Error(),
		})
		return false, r.errorClassifier.wrapStoreError(result.Error)
	}

	return count > 0, nil
}

// FindUnfinished returns tx ids whose TRY succeeded before the cutoff with
// no terminal CONFIRM or CANCEL success entry for the participant
func (r *ActionLogRepository) FindUnfinished(ctx context.Context, participant string, cutoff time.Time) ([]string, error) {
	var txIDs []string
	result := r.db.WithContext(ctx).Raw(`
		SELECT t.tx_id FROM action_log t
		WHERE t.participant = ? AND t.phase = ? AND t.outcome = ? AND t.created_at < ?
		AND NOT EXISTS (
			SELECT 1 FROM action_log f
			WHERE f.tx_id = t.tx_id AND f.participant = t.participant
			AND f.phase IN (?, ?) AND f.outcome = ?
		)`,
		participant, string(entity.PhaseTry), string(entity.OutcomeSuccess), cutoff,
		string(entity.PhaseConfirm), string(entity.PhaseCancel), string(entity.OutcomeSuccess),
	).Scan(&txIDs)

	if result.Error != nil {
		r.logger.Error("Failed to find unfinished transactions", map[string]any{
			"participant": participant,
			"error":       result.Error.Error(),
		})
		return nil, r.errorClassifier.wrapStoreError(result.Error)
	}

	return txIDs, nil
}
