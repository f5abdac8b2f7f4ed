package finance

import (
	"github.com/shopspring/decimal"
)

// ReceivableStatus represents the status of a receivable (recebimento)
type ReceivableStatus string

const (
	ReceivableStatusPending   ReceivableStatus = "pendente"
	ReceivableStatusReceived  ReceivableStatus = "recebido"
	ReceivableStatusCancelled ReceivableStatus = "cancelado"
)

// IsValid checks if the status is a valid ReceivableStatus
func (s ReceivableStatus) IsValid() bool {
	switch s {
	case ReceivableStatusPending, ReceivableStatusReceived, ReceivableStatusCancelled:
		return true
	}
	return false
}

// ReceivableType classifies how a receivable recurs
type ReceivableType string

const (
	ReceivableTypeMonthly ReceivableType = "mensal"
	ReceivableTypeOneOff  ReceivableType = "avulso"
	ReceivableTypeProject ReceivableType = "projeto"
)

// IsValid checks if the type is a valid ReceivableType
func (t ReceivableType) IsValid() bool {
	switch t {
	case ReceivableTypeMonthly, ReceivableTypeOneOff, ReceivableTypeProject:
		return true
	}
	return false
}

// Receivable is an expected or realized cash inflow tied to a client.
// Dates are ISO "YYYY-MM-DD" strings; an empty string means null.
type Receivable struct {
	ID               string           `mapstructure:"id" json:"id"`
	ClienteID        *string          `mapstructure:"cliente_id" json:"cliente_id"`
	CategoriaID      *string          `mapstructure:"categoria_id" json:"categoria_id"`
	FormaPagamentoID *string          `mapstructure:"forma_pagamento_id" json:"forma_pagamento_id"`
	Descricao        string           `mapstructure:"descricao" json:"descricao"`
	ValorEsperado    decimal.Decimal  `mapstructure:"valor_esperado" json:"valor_esperado"`
	ValorRecebido    *decimal.Decimal `mapstructure:"valor_recebido" json:"valor_recebido"`
	DataEmissao      string           `mapstructure:"data_emissao" json:"data_emissao,omitempty"`
	DataVencimento   string           `mapstructure:"data_vencimento" json:"data_vencimento,omitempty"`
	DataRecebimento  string           `mapstructure:"data_recebimento" json:"data_recebimento,omitempty"`
	Status           ReceivableStatus `mapstructure:"status" json:"status"`
	TipoRecebimento  ReceivableType   `mapstructure:"tipo_recebimento" json:"tipo_recebimento"`
	ParcelaAtual     *int             `mapstructure:"parcela_atual" json:"parcela_atual"`
	TotalParcelas    *int             `mapstructure:"total_parcelas" json:"total_parcelas"`
	Observacoes      string           `mapstructure:"observacoes" json:"observacoes,omitempty"`

	// Display names filled by lookup resolution
	ClienteNome        string `mapstructure:"-" json:"cliente_nome"`
	CategoriaNome      string `mapstructure:"-" json:"categoria_nome"`
	FormaPagamentoNome string `mapstructure:"-" json:"forma_pagamento_nome"`
}

// IsReceived reports whether the receivable has been realized
func (r *Receivable) IsReceived() bool {
	return r.Status == ReceivableStatusReceived
}

// RealizedAmount returns the authoritative amount for totals: the received
// amount once received, the expected amount otherwise.
func (r *Receivable) RealizedAmount() decimal.Decimal {
	if r.IsReceived() && r.ValorRecebido != nil {
		return *r.ValorRecebido
	}
	return r.ValorEsperado
}

// RealizedDate is the date a received amount is booked on
func (r *Receivable) RealizedDate() string {
	if r.DataRecebimento != "" {
		return r.DataRecebimento
	}
	return r.DataVencimento
}

// IsOverdue reports whether a pending receivable is past its due date
func (r *Receivable) IsOverdue(today string) bool {
	return IsOverdue(r.Status == ReceivableStatusPending, r.DataVencimento, today)
}

// Installment renders "n/total" when installment counters are present
func (r *Receivable) Installment() string {
	return installmentLabel(r.ParcelaAtual, r.TotalParcelas)
}
