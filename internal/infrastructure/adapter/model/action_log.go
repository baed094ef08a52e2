package model

import (
	"time"
)

// ActionLog is the database model for participant phase logs
type ActionLog struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	TxID        string    `gorm:"not null;size:64;index:idx_action_log_gate,priority:1"`
	Participant string    `gorm:"not null;size:32;index:idx_action_log_gate,priority:2"`
	Phase       string    `gorm:"not null;size:10;index:idx_action_log_gate,priority:3"`
	Outcome     string    `gorm:"not null;size:10"`
	Note        string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"not null"`
}

// TableName specifies the table name for ActionLog
func (ActionLog) TableName() string {
	return "action_log"
}
