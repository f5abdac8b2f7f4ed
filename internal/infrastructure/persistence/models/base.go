package models

import (
	"time"
)

// BaseModel provides the identifier and audit timestamps shared by every table.
// Identifiers are UUID strings so the same schema runs on postgres and sqlite.
type BaseModel struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// All returns every model in dependency order for AutoMigrate
func All() []any {
	return []any{
		&ClientModel{},
		&SupplierModel{},
		&CategoryModel{},
		&PaymentMethodModel{},
		&ReceivableModel{},
		&PayableModel{},
		&MovementModel{},
	}
}
