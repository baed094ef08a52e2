package model

import (
	"time"
)

// OutboxMessage is the database model for intent-to-publish rows. The
// unique business id index is the at-most-one-in-flight-credit guarantee.
type OutboxMessage struct {
	MessageID     string    `gorm:"primaryKey;size:64"`
	BusinessType  string    `gorm:"not null;size:64"`
	BusinessID    string    `gorm:"not null;size:64;uniqueIndex"`
	Payload       []byte    `gorm:"not null;type:bytea"`
	Status        string    `gorm:"not null;size:20;index"`
	RetryCount    int       `gorm:"not null;default:0"`
	NextRetryTime time.Time `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName specifies the table name for OutboxMessage
func (OutboxMessage) TableName() string {
	return "outbox_message"
}
