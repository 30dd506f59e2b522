// internal/storage/models/ledger_entry.go
package models

import "time"

// LedgerEntry: одна пара ключ/значение симулированного леджера.
type LedgerEntry struct {
	Key       string    `gorm:"primaryKey;size:128"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName фиксирует имя таблицы независимо от стратегии именования GORM.
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
