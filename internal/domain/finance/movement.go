package finance

import (
	"github.com/shopspring/decimal"
)

// FlowType is the direction of a cash movement; categories carry it too
type FlowType string

const (
	FlowIn  FlowType = "entrada"
	FlowOut FlowType = "saida"
)

// IsValid checks if the flow type is valid
func (f FlowType) IsValid() bool {
	return f == FlowIn || f == FlowOut
}

// DailyMovement is a single ledger entry (movimentação diária)
type DailyMovement struct {
	ID               string          `mapstructure:"id" json:"id"`
	Tipo             FlowType        `mapstructure:"tipo" json:"tipo"`
	CategoriaID      *string         `mapstructure:"categoria_id" json:"categoria_id"`
	FormaPagamentoID *string         `mapstructure:"forma_pagamento_id" json:"forma_pagamento_id"`
	Descricao        string          `mapstructure:"descricao" json:"descricao"`
	Valor            decimal.Decimal `mapstructure:"valor" json:"valor"`
	DataTransacao    string          `mapstructure:"data_transacao" json:"data_transacao"`
	Beneficiario     string          `mapstructure:"beneficiario" json:"beneficiario,omitempty"`
	Responsavel      string          `mapstructure:"responsavel" json:"responsavel,omitempty"`
	Observacoes      string          `mapstructure:"observacoes" json:"observacoes,omitempty"`
	ComprovanteURL   string          `mapstructure:"comprovante_url" json:"comprovante_url,omitempty"`

	CategoriaNome      string `mapstructure:"-" json:"categoria_nome"`
	FormaPagamentoNome string `mapstructure:"-" json:"forma_pagamento_nome"`
	// ComprovanteLink is a downloadable link for ComprovanteURL
	ComprovanteLink string `mapstructure:"-" json:"comprovante_link,omitempty"`
}

// SignedAmount is positive for inflows and negative for outflows
func (m *DailyMovement) SignedAmount() decimal.Decimal {
	if m.Tipo == FlowOut {
		return m.Valor.Neg()
	}
	return m.Valor
}
