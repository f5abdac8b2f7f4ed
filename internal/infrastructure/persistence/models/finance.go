package models

import (
	"github.com/shopspring/decimal"
)

// ReceivableModel is the persistence model for receivables.
// Dates are calendar dates stored as DATE (postgres) or ISO text (sqlite).
type ReceivableModel struct {
	BaseModel
	ClienteID        *string          `gorm:"type:varchar(36);index"`
	CategoriaID      *string          `gorm:"type:varchar(36);index"`
	FormaPagamentoID *string          `gorm:"type:varchar(36)"`
	Descricao        string           `gorm:"type:varchar(255);not null"`
	ValorEsperado    decimal.Decimal  `gorm:"type:decimal(14,2);not null"`
	ValorRecebido    *decimal.Decimal `gorm:"type:decimal(14,2)"`
	DataEmissao      *string          `gorm:"type:date"`
	DataVencimento   *string          `gorm:"type:date;index"`
	DataRecebimento  *string          `gorm:"type:date;index"`
	Status           string           `gorm:"type:varchar(20);not null;default:'pendente';index"`
	TipoRecebimento  string           `gorm:"type:varchar(20);not null;default:'mensal';index"`
	ParcelaAtual     *int
	TotalParcelas    *int
	Observacoes      string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (ReceivableModel) TableName() string {
	return "recebimentos"
}

// PayableModel is the persistence model for payables
type PayableModel struct {
	BaseModel
	FornecedorID     *string          `gorm:"type:varchar(36);index"`
	CategoriaID      *string          `gorm:"type:varchar(36);index"`
	FormaPagamentoID *string          `gorm:"type:varchar(36)"`
	Descricao        string           `gorm:"type:varchar(255);not null"`
	ValorEsperado    decimal.Decimal  `gorm:"type:decimal(14,2);not null"`
	ValorPago        *decimal.Decimal `gorm:"type:decimal(14,2)"`
	DataEmissao      *string          `gorm:"type:date"`
	DataVencimento   *string          `gorm:"type:date;index"`
	DataPagamento    *string          `gorm:"type:date;index"`
	Status           string           `gorm:"type:varchar(20);not null;default:'pendente';index"`
	TipoPagamento    string           `gorm:"type:varchar(20);not null;default:'fixo';index"`
	ParcelaAtual     *int
	TotalParcelas    *int
	Observacoes      string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PayableModel) TableName() string {
	return "pagamentos"
}

// MovementModel is the persistence model for daily cash movements
type MovementModel struct {
	BaseModel
	Tipo             string          `gorm:"type:varchar(10);not null;index"`
	CategoriaID      *string         `gorm:"type:varchar(36);index"`
	FormaPagamentoID *string         `gorm:"type:varchar(36)"`
	Descricao        string          `gorm:"type:varchar(255);not null"`
	Valor            decimal.Decimal `gorm:"type:decimal(14,2);not null"`
	DataTransacao    string          `gorm:"type:date;not null;index"`
	Beneficiario     string          `gorm:"type:varchar(200)"`
	Responsavel      string          `gorm:"type:varchar(200)"`
	Observacoes      string          `gorm:"type:text"`
	ComprovanteURL   string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (MovementModel) TableName() string {
	return "movimentacoes_diarias"
}
