package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	errs "github.com/amirhossein-jamali/charging-settlement/internal/domain/error"
)

func TestIsDuplicateKeyError(t *testing.T) {
	classifier := NewErrorClassifier()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"postgres duplicate key", errors.New(`duplicate key value violates unique constraint "idx_tx_id"`), true},
		{"sqlite unique constraint", errors.New("UNIQUE constraint failed: outbox.message_id"), true},
		{"mysql duplicate entry", errors.New("Duplicate entry 'tx-1' for key 'PRIMARY'"), true},
		{"unrelated error", errors.New("relation does not exist"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifier.IsDuplicateKeyError(tt.err))
		})
	}
}

func TestIsLockError(t *testing.T) {
	classifier := NewErrorClassifier()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"deadlock", errors.New("deadlock detected"), true},
		{"lock wait timeout", errors.New("lock wait timeout exceeded"), true},
		{"serialization conflict", errors.New("could not serialize access due to concurrent update"), true},
		{"serialization failure", errors.New("ERROR: serialization failure"), true},
		{"unrelated error", errors.New("syntax error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifier.IsLockError(tt.err))
		})
	}
}

func TestIsConnectionError(t *testing.T) {
	classifier := NewErrorClassifier()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"refused connection", errors.New("connection refused"), true},
		{"dial failure", errors.New("dial tcp 10.0.0.1:5432: i/o timeout"), true},
		{"broken pipe", errors.New("write: broken pipe"), true},
		{"unexpected EOF", errors.New("unexpected EOF"), true},
		{"unrelated error", errors.New("division by zero"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifier.IsConnectionError(tt.err))
		})
	}
}

func TestWrapStoreError(t *testing.T) {
	classifier := NewErrorClassifier()

	assert.NoError(t, classifier.wrapStoreError(nil))

	err := classifier.wrapStoreError(errors.New("duplicate key value violates unique constraint"))
	assert.ErrorIs(t, err, errs.ErrDuplicateKey)

	err = classifier.wrapStoreError(errors.New("deadlock detected"))
	assert.ErrorIs(t, err, errs.ErrRowLocked)

	err = classifier.wrapStoreError(errors.New("something else entirely"))
	assert.ErrorIs(t, err, errs.ErrDatabaseConnection)
}
