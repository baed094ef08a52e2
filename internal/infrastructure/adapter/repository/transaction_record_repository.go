package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/amirhossein-jamali/charging-settlement/internal/domain/entity"
	errs "github.com/amirhossein-jamali/charging-settlement/internal/domain/error"
	coreport "github.com/amirhossein-jamali/charging-settlement/internal/domain/port/core"
	"github.com/amirhossein-jamali/charging-settlement/internal/infrastructure/adapter/model"
)

// TransactionRecordRepository implements TransactionRecordRepository using GORM
type TransactionRecordRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewTransactionRecordRepository creates a new TransactionRecordRepository instance
func NewTransactionRecordRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *TransactionRecordRepository {
	return &TransactionRecordRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// entityToModel converts a transaction record entity to a database model
func (r *TransactionRecordRepository) entityToModel(record *entity.TransactionRecord) model.TransactionRecord {
	return model.TransactionRecord{
		TxID:       record.TxID,
		Status:     string(record.Status),
		CreatedAt:  record.CreatedAt,
		UpdatedAt:  record.UpdatedAt,
		CommitTime: record.CommitTime,
		CancelTime: record.CancelTime,
	}
}

// modelToEntity converts a transaction record model to an entity
func (r *TransactionRecordRepository) modelToEntity(m *model.TransactionRecord) *entity.TransactionRecord {
	return &entity.TransactionRecord{
		TxID:       m.TxID,
		Status:     entity.TxStatus(m.Status),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
		CommitTime: m.CommitTime,
		CancelTime: m.CancelTime,
	}
}

// Create saves a new transaction record
func (r *TransactionRecordRepository) Create(ctx context.Context, record *entity.TransactionRecord) error {
	recordModel := r.entityToModel(record)

	result := r.db.WithContext(ctx).Create(&recordModel)
	if result.Error != nil {
		r.logger.Error("Failed to create transaction record", map[string]any{
			"tx_id": record.TxID,
			"error": result.Error.Error(),
		})
		return r.errorClassifier.wrapStoreError(result.Error)
	}

	return nil
}

// GetByTxID retrieves a transaction record by its tx id
func (r *TransactionRecordRepository) GetByTxID(ctx context.Context, txID string) (*entity.TransactionRecord, error) {
	var recordModel model.TransactionRecord
	result := r.db.WithContext(ctx).
		Where("tx_id = ?", txID).
		First(&recordModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTransactionNotFound
		}
		r.logger.Error("Failed to get transaction record", map[string]any{
			"tx_id": txID,
			"error": result.Error.Error(),
		})
		return nil, r.errorClassifier.wrapStoreError(result.Error)
	}

	return r.modelToEntity(&recordModel), nil
}

// terminalTxStatuses are the statuses no update may overwrite
var terminalTxStatuses = []string{string(entity.TxCommitted), string(entity.TxRolledBack)}

// UpdateStatus sets the record status and the matching phase timestamp.
// COMMITTED and ROLLED_BACK are immutable: an update against a terminal
// record matches no row and is dropped as a no-op, so a late rollback can
// never rewrite a committed transaction.
func (r *TransactionRecordRepository) UpdateStatus(ctx context.Context, txID string, status entity.TxStatus) error {
	now := r.timeProvider.Now()
	updates := map[string]interface{}{
		"status":     string(status),
		"updated_at": now,
	}
	switch status {
	case entity.TxCommitted:
		updates["commit_time"] = now
	case entity.TxRolledBack:
		updates["cancel_time"] = now
	}

	result := r.db.WithContext(ctx).Model(&model.TransactionRecord{}).
		Where("tx_id = ? AND status NOT IN ?", txID, terminalTxStatuses).
		Updates(updates)

	if result.Error != nil {
		r.logger.Error("Failed to update transaction record status", map[string]any{
			"tx_id":  txID,
			"status": status,
			"error":  result.Error.Error(),
		})
		return r.errorClassifier.wrapStoreError(result.Error)
	}

	if result.RowsAffected == 0 {
		current, err := r.GetByTxID(ctx, txID)
		if err != nil {
			return err
		}
		if current.Status.IsTerminal() {
			r.logger.Warn("Ignoring status update on terminal transaction record", map[string]any{
				"tx_id":     txID,
				"current":   string(current.Status),
				"discarded": string(status),
			})
			return nil
		}
		return errs.ErrTransactionNotFound
	}

	return nil
}

// WithRepairClaim takes a non-blocking lock on a non-terminal record row and
// holds it while fn runs. The claim keeps two supervisors, or a supervisor
// and a late coordinator, from repairing the same transaction at once.
// fn receives a context carrying the claim transaction, so the record-row
// mutation it performs joins the claim's unit instead of waiting on the
// claim's own lock from a second connection. Units of work begun inside fn
// still get their own transactions and commit independently. When fn fails
// the claim rolls back, discarding the record write and releasing the row
// for the next sweep.
func (r *TransactionRecordRepository) WithRepairClaim(ctx context.Context, txID string, fn func(ctx context.Context) error) (bool, error) {
	claimTx := r.db.WithContext(ctx).Begin()
	if claimTx.Error != nil {
		return false, r.errorClassifier.wrapStoreError(claimTx.Error)
	}

	var recordModel model.TransactionRecord
	result := claimTx.
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("tx_id = ? AND status NOT IN ?", txID, terminalTxStatuses).
		First(&recordModel)

	if result.Error != nil {
		claimTx.Rollback()
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			// Either terminal already or locked by another worker; both
			// mean this worker must not act.
			return false, nil
		}
		r.logger.Error("Failed to claim transaction record", map[string]any{
			"tx_id": txID,
			"error": result.Error.Error(),
		})
		return false, r.errorClassifier.wrapStoreError(result.Error)
	}

	if fnErr := fn(ContextWithTx(ctx, claimTx)); fnErr != nil {
		claimTx.Rollback()
		return true, fnErr
	}

	if err := claimTx.Commit().Error; err != nil {
		r.logger.Error("Failed to release transaction record claim", map[string]any{
			"tx_id": txID,
			"error": err.Error(),
		})
		return true, fmt.Errorf("release repair claim: %w", err)
	}

	return true, nil
}
