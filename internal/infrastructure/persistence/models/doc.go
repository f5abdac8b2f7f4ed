// Package models contains the GORM table definitions of the finance dashboard.
// The store reads and writes plain rows, so these models only describe the
// schema: column types, defaults and indexes used by AutoMigrate on sqlite and
// mirrored by the SQL migrations on postgres.
//
// Structure:
// - base.go: BaseModel and the migration order
// - catalog.go: clients, suppliers, categories and payment methods
// - finance.go: receivables, payables and daily movements
package models
