package model

import (
	"time"
)

// TransactionRecord is the database model for coordinator transaction records
type TransactionRecord struct {
	TxID       string    `gorm:"primaryKey;size:64"`
	Status     string    `gorm:"not null;size:20;index"`
	CreatedAt  time.Time `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
	CommitTime *time.Time
	CancelTime *time.Time
}

// TableName specifies the table name for TransactionRecord
func (TransactionRecord) TableName() string {
	return "transaction_record"
}
