package finance

import (
	"github.com/shopspring/decimal"
)

// PayableStatus represents the status of a payable (pagamento)
type PayableStatus string

const (
	PayableStatusPending   PayableStatus = "pendente"
	PayableStatusPaid      PayableStatus = "pago"
	PayableStatusCancelled PayableStatus = "cancelado"
)

// IsValid checks if the status is a valid PayableStatus
func (s PayableStatus) IsValid() bool {
	switch s {
	case PayableStatusPending, PayableStatusPaid, PayableStatusCancelled:
		return true
	}
	return false
}

// PayableType classifies the nature of a payable
type PayableType string

const (
	PayableTypeFixed       PayableType = "fixo"
	PayableTypeVariable    PayableType = "variavel"
	PayableTypeCommission  PayableType = "comissao"
	PayableTypeInstallment PayableType = "parcelado"
)

// IsValid checks if the type is a valid PayableType
func (t PayableType) IsValid() bool {
	switch t {
	case PayableTypeFixed, PayableTypeVariable, PayableTypeCommission, PayableTypeInstallment:
		return true
	}
	return false
}

// Payable is an expected or realized cash outflow tied to a supplier
type Payable struct {
	ID               string           `mapstructure:"id" json:"id"`
	FornecedorID     *string          `mapstructure:"fornecedor_id" json:"fornecedor_id"`
	CategoriaID      *string          `mapstructure:"categoria_id" json:"categoria_id"`
	FormaPagamentoID *string          `mapstructure:"forma_pagamento_id" json:"forma_pagamento_id"`
	Descricao        string           `mapstructure:"descricao" json:"descricao"`
	ValorEsperado    decimal.Decimal  `mapstructure:"valor_esperado" json:"valor_esperado"`
	ValorPago        *decimal.Decimal `mapstructure:"valor_pago" json:"valor_pago"`
	DataEmissao      string           `mapstructure:"data_emissao" json:"data_emissao,omitempty"`
	DataVencimento   string           `mapstructure:"data_vencimento" json:"data_vencimento,omitempty"`
	DataPagamento    string           `mapstructure:"data_pagamento" json:"data_pagamento,omitempty"`
	Status           PayableStatus    `mapstructure:"status" json:"status"`
	TipoPagamento    PayableType      `mapstructure:"tipo_pagamento" json:"tipo_pagamento"`
	ParcelaAtual     *int             `mapstructure:"parcela_atual" json:"parcela_atual"`
	TotalParcelas    *int             `mapstructure:"total_parcelas" json:"total_parcelas"`
	Observacoes      string           `mapstructure:"observacoes" json:"observacoes,omitempty"`

	FornecedorNome     string `mapstructure:"-" json:"fornecedor_nome"`
	CategoriaNome      string `mapstructure:"-" json:"categoria_nome"`
	FormaPagamentoNome string `mapstructure:"-" json:"forma_pagamento_nome"`
}

// IsPaid reports whether the payable has been settled
func (p *Payable) IsPaid() bool {
	return p.Status == PayableStatusPaid
}

// RealizedAmount returns the paid amount once paid, the expected amount otherwise
func (p *Payable) RealizedAmount() decimal.Decimal {
	if p.IsPaid() && p.ValorPago != nil {
		return *p.ValorPago
	}
	return p.ValorEsperado
}

// RealizedDate is the date a paid amount is booked on
func (p *Payable) RealizedDate() string {
	if p.DataPagamento != "" {
		return p.DataPagamento
	}
	return p.DataVencimento
}

// IsOverdue reports whether a pending payable is past its due date
func (p *Payable) IsOverdue(today string) bool {
	return IsOverdue(p.Status == PayableStatusPending, p.DataVencimento, today)
}

// Installment renders "n/total" when installment counters are present
func (p *Payable) Installment() string {
	return installmentLabel(p.ParcelaAtual, p.TotalParcelas)
}
