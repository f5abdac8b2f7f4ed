package finance

import (
	"github.com/backoffice/financeiro/internal/domain/query"
)

// ReceivableField enumerates the sortable/filterable receivable fields
type ReceivableField string

const (
	ReceivableDescription   ReceivableField = "descricao"
	ReceivableClient        ReceivableField = "cliente_nome"
	ReceivableCategory      ReceivableField = "categoria_nome"
	ReceivablePaymentMethod ReceivableField = "forma_pagamento_nome"
	ReceivableExpected      ReceivableField = "valor_esperado"
	ReceivableReceived      ReceivableField = "valor_recebido"
	ReceivableIssueDate     ReceivableField = "data_emissao"
	ReceivableDueDate       ReceivableField = "data_vencimento"
	ReceivableReceivedDate  ReceivableField = "data_recebimento"
	ReceivableStatusField   ReceivableField = "status"
	ReceivableTypeField     ReceivableField = "tipo_recebimento"
	ReceivableNotes         ReceivableField = "observacoes"
)

// ReceivableSchema describes receivables to the query engine
var ReceivableSchema = &query.Schema[Receivable, ReceivableField]{
	Fields: map[ReceivableField]query.Field[Receivable]{
		ReceivableDescription:   {Kind: query.KindString, Column: "descricao", Get: func(r *Receivable) query.Value { return query.Str(r.Descricao) }},
		ReceivableClient:        {Kind: query.KindString, Get: func(r *Receivable) query.Value { return refName(r.ClienteID, r.ClienteNome) }},
		ReceivableCategory:      {Kind: query.KindString, Get: func(r *Receivable) query.Value { return refName(r.CategoriaID, r.CategoriaNome) }},
		ReceivablePaymentMethod: {Kind: query.KindString, Get: func(r *Receivable) query.Value { return refName(r.FormaPagamentoID, r.FormaPagamentoNome) }},
		ReceivableExpected:      {Kind: query.KindNumber, Column: "valor_esperado", Get: func(r *Receivable) query.Value { return query.Num(r.ValorEsperado) }},
		ReceivableReceived:      {Kind: query.KindNumber, Column: "valor_recebido", Get: func(r *Receivable) query.Value { return query.NumPtr(r.ValorRecebido) }},
		ReceivableIssueDate:     {Kind: query.KindDate, Column: "data_emissao", Get: func(r *Receivable) query.Value { return query.Date(r.DataEmissao) }},
		ReceivableDueDate:       {Kind: query.KindDate, Column: "data_vencimento", Get: func(r *Receivable) query.Value { return query.Date(r.DataVencimento) }},
		ReceivableReceivedDate:  {Kind: query.KindDate, Column: "data_recebimento", Get: func(r *Receivable) query.Value { return query.Date(r.DataRecebimento) }},
		ReceivableStatusField:   {Kind: query.KindString, Column: "status", Get: func(r *Receivable) query.Value { return query.Str(string(r.Status)) }},
		ReceivableTypeField:     {Kind: query.KindString, Column: "tipo_recebimento", Get: func(r *Receivable) query.Value { return query.Str(string(r.TipoRecebimento)) }},
		ReceivableNotes:         {Kind: query.KindString, Column: "observacoes", Get: func(r *Receivable) query.Value { return query.Str(r.Observacoes) }},
	},
	DefaultSort: query.Sort[ReceivableField]{Field: ReceivableDueDate, Descending: true},
	StatusField: ReceivableStatusField,
	TypeField:   ReceivableTypeField,
	DateField:   ReceivableDueDate,
	Search: []ReceivableField{
		ReceivableDescription, ReceivableClient, ReceivableCategory, ReceivablePaymentMethod, ReceivableNotes,
	},
	Overdue:       func(r *Receivable, today string) bool { return r.IsOverdue(today) },
	OverdueStatus: string(ReceivableStatusPending),
	DueField:      ReceivableDueDate,
}

// PayableField enumerates the sortable/filterable payable fields
type PayableField string

const (
	PayableDescription   PayableField = "descricao"
	PayableSupplier      PayableField = "fornecedor_nome"
	PayableCategory      PayableField = "categoria_nome"
	PayablePaymentMethod PayableField = "forma_pagamento_nome"
	PayableExpected      PayableField = "valor_esperado"
	PayablePaid          PayableField = "valor_pago"
	PayableIssueDate     PayableField = "data_emissao"
	PayableDueDate       PayableField = "data_vencimento"
	PayablePaidDate      PayableField = "data_pagamento"
	PayableStatusField   PayableField = "status"
	PayableTypeField     PayableField = "tipo_pagamento"
	PayableNotes         PayableField = "observacoes"
)

// PayableSchema describes payables to the query engine
var PayableSchema = &query.Schema[Payable, PayableField]{
	Fields: map[PayableField]query.Field[Payable]{
		PayableDescription:   {Kind: query.KindString, Column: "descricao", Get: func(p *Payable) query.Value { return query.Str(p.Descricao) }},
		PayableSupplier:      {Kind: query.KindString, Get: func(p *Payable) query.Value { return refName(p.FornecedorID, p.FornecedorNome) }},
		PayableCategory:      {Kind: query.KindString, Get: func(p *Payable) query.Value { return refName(p.CategoriaID, p.CategoriaNome) }},
		PayablePaymentMethod: {Kind: query.KindString, Get: func(p *Payable) query.Value { return refName(p.FormaPagamentoID, p.FormaPagamentoNome) }},
		PayableExpected:      {Kind: query.KindNumber, Column: "valor_esperado", Get: func(p *Payable) query.Value { return query.Num(p.ValorEsperado) }},
		PayablePaid:          {Kind: query.KindNumber, Column: "valor_pago", Get: func(p *Payable) query.Value { return query.NumPtr(p.ValorPago) }},
		PayableIssueDate:     {Kind: query.KindDate, Column: "data_emissao", Get: func(p *Payable) query.Value { return query.Date(p.DataEmissao) }},
		PayableDueDate:       {Kind: query.KindDate, Column: "data_vencimento", Get: func(p *Payable) query.Value { return query.Date(p.DataVencimento) }},
		PayablePaidDate:      {Kind: query.KindDate, Column: "data_pagamento", Get: func(p *Payable) query.Value { return query.Date(p.DataPagamento) }},
		PayableStatusField:   {Kind: query.KindString, Column: "status", Get: func(p *Payable) query.Value { return query.Str(string(p.Status)) }},
		PayableTypeField:     {Kind: query.KindString, Column: "tipo_pagamento", Get: func(p *Payable) query.Value { return query.Str(string(p.TipoPagamento)) }},
		PayableNotes:         {Kind: query.KindString, Column: "observacoes", Get: func(p *Payable) query.Value { return query.Str(p.Observacoes) }},
	},
	DefaultSort: query.Sort[PayableField]{Field: PayableDueDate, Descending: true},
	StatusField: PayableStatusField,
	TypeField:   PayableTypeField,
	DateField:   PayableDueDate,
	Search: []PayableField{
		PayableDescription, PayableSupplier, PayableCategory, PayablePaymentMethod, PayableNotes,
	},
	Overdue:       func(p *Payable, today string) bool { return p.IsOverdue(today) },
	OverdueStatus: string(PayableStatusPending),
	DueField:      PayableDueDate,
}

// MovementField enumerates the sortable/filterable movement fields
type MovementField string

const (
	MovementDescription   MovementField = "descricao"
	MovementCategory      MovementField = "categoria_nome"
	MovementPaymentMethod MovementField = "forma_pagamento_nome"
	MovementAmount        MovementField = "valor"
	MovementDate          MovementField = "data_transacao"
	MovementTypeField     MovementField = "tipo"
	MovementBeneficiary   MovementField = "beneficiario"
	MovementResponsible   MovementField = "responsavel"
	MovementNotes         MovementField = "observacoes"
)

// MovementSchema describes daily movements to the query engine. Movements
// have no status or due date, so the overdue flag does not apply.
var MovementSchema = &query.Schema[DailyMovement, MovementField]{
	Fields: map[MovementField]query.Field[DailyMovement]{
		MovementDescription:   {Kind: query.KindString, Column: "descricao", Get: func(m *DailyMovement) query.Value { return query.Str(m.Descricao) }},
		MovementCategory:      {Kind: query.KindString, Get: func(m *DailyMovement) query.Value { return refName(m.CategoriaID, m.CategoriaNome) }},
		MovementPaymentMethod: {Kind: query.KindString, Get: func(m *DailyMovement) query.Value { return refName(m.FormaPagamentoID, m.FormaPagamentoNome) }},
		MovementAmount:        {Kind: query.KindNumber, Column: "valor", Get: func(m *DailyMovement) query.Value { return query.Num(m.Valor) }},
		MovementDate:          {Kind: query.KindDate, Column: "data_transacao", Get: func(m *DailyMovement) query.Value { return query.Date(m.DataTransacao) }},
		MovementTypeField:     {Kind: query.KindString, Column: "tipo", Get: func(m *DailyMovement) query.Value { return query.Str(string(m.Tipo)) }},
		MovementBeneficiary:   {Kind: query.KindString, Column: "beneficiario", Get: func(m *DailyMovement) query.Value { return query.Str(m.Beneficiario) }},
		MovementResponsible:   {Kind: query.KindString, Column: "responsavel", Get: func(m *DailyMovement) query.Value { return query.Str(m.Responsavel) }},
		MovementNotes:         {Kind: query.KindString, Column: "observacoes", Get: func(m *DailyMovement) query.Value { return query.Str(m.Observacoes) }},
	},
	DefaultSort: query.Sort[MovementField]{Field: MovementDate, Descending: true},
	TypeField:   MovementTypeField,
	DateField:   MovementDate,
	Search: []MovementField{
		MovementDescription, MovementCategory, MovementPaymentMethod, MovementBeneficiary, MovementResponsible, MovementNotes,
	},
}

// refName is the value of a derived name field; a nil reference is null so
// it sorts after every named row.
func refName(id *string, name string) query.Value {
	if id == nil || *id == "" {
		return query.Null()
	}
	return query.Str(name)
}
