package finance

// CreateReceivableInput is a new receivable as typed on the form.
// Counterpart, category and payment method are display names resolved to
// ids by exact match.
type CreateReceivableInput struct {
	Descricao       string `json:"descricao" validate:"required,max=255"`
	Cliente         string `json:"cliente" validate:"max=255"`
	Categoria       string `json:"categoria" validate:"max=255"`
	FormaPagamento  string `json:"forma_pagamento" validate:"max=255"`
	ValorEsperado   string `json:"valor_esperado" validate:"required"`
	DataEmissao     string `json:"data_emissao" validate:"omitempty,datetime=2006-01-02"`
	DataVencimento  string `json:"data_vencimento" validate:"required,datetime=2006-01-02"`
	TipoRecebimento string `json:"tipo_recebimento" validate:"required,oneof=mensal avulso projeto"`
	ParcelaAtual    *int   `json:"parcela_atual" validate:"omitempty,min=1"`
	TotalParcelas   *int   `json:"total_parcelas" validate:"omitempty,min=1"`
	Observacoes     string `json:"observacoes" validate:"max=1000"`
}

// CreatePayableInput is a new payable as typed on the form
type CreatePayableInput struct {
	Descricao      string `json:"descricao" validate:"required,max=255"`
	Fornecedor     string `json:"fornecedor" validate:"max=255"`
	Categoria      string `json:"categoria" validate:"max=255"`
	FormaPagamento string `json:"forma_pagamento" validate:"max=255"`
	ValorEsperado  string `json:"valor_esperado" validate:"required"`
	DataEmissao    string `json:"data_emissao" validate:"omitempty,datetime=2006-01-02"`
	DataVencimento string `json:"data_vencimento" validate:"required,datetime=2006-01-02"`
	TipoPagamento  string `json:"tipo_pagamento" validate:"required,oneof=fixo variavel comissao parcelado"`
	ParcelaAtual   *int   `json:"parcela_atual" validate:"omitempty,min=1"`
	TotalParcelas  *int   `json:"total_parcelas" validate:"omitempty,min=1"`
	Observacoes    string `json:"observacoes" validate:"max=1000"`
}

// CreateMovementInput is a new daily movement as typed on the form
type CreateMovementInput struct {
	Tipo           string `json:"tipo" validate:"required,oneof=entrada saida"`
	Descricao      string `json:"descricao" validate:"required,max=255"`
	Categoria      string `json:"categoria" validate:"max=255"`
	FormaPagamento string `json:"forma_pagamento" validate:"max=255"`
	Valor          string `json:"valor" validate:"required"`
	DataTransacao  string `json:"data_transacao" validate:"required,datetime=2006-01-02"`
	Beneficiario   string `json:"beneficiario" validate:"max=255"`
	Responsavel    string `json:"responsavel" validate:"max=255"`
	Observacoes    string `json:"observacoes" validate:"max=1000"`
	// Comprovante is a receipt URL or an object key in the receipt bucket
	Comprovante string `json:"comprovante" validate:"max=1024"`
}

// SettleInput marks a receivable received or a payable paid. An empty
// amount settles the expected amount; an empty date settles today.
type SettleInput struct {
	Valor string `json:"valor"`
	Data  string `json:"data" validate:"omitempty,datetime=2006-01-02"`
}

// ClientInput creates or replaces a client
type ClientInput struct {
	Nome         string `json:"nome" validate:"required,max=255"`
	Email        string `json:"email" validate:"omitempty,email"`
	Telefone     string `json:"telefone" validate:"max=50"`
	Documento    string `json:"documento" validate:"max=50"`
	Endereco     string `json:"endereco" validate:"max=255"`
	Cidade       string `json:"cidade" validate:"max=100"`
	Estado       string `json:"estado" validate:"max=2"`
	CEP          string `json:"cep" validate:"max=10"`
	GrupoCliente string `json:"grupo_cliente" validate:"max=100"`
	Ativo        *bool  `json:"ativo"`
}

// SupplierInput creates or replaces a supplier
type SupplierInput struct {
	Nome      string `json:"nome" validate:"required,max=255"`
	Email     string `json:"email" validate:"omitempty,email"`
	Telefone  string `json:"telefone" validate:"max=50"`
	Documento string `json:"documento" validate:"max=50"`
	Endereco  string `json:"endereco" validate:"max=255"`
	Cidade    string `json:"cidade" validate:"max=100"`
	Estado    string `json:"estado" validate:"max=2"`
	CEP       string `json:"cep" validate:"max=10"`
	Ativo     *bool  `json:"ativo"`
}

// CategoryInput creates or replaces a category
type CategoryInput struct {
	Nome string `json:"nome" validate:"required,max=255"`
	Tipo string `json:"tipo" validate:"required,oneof=entrada saida"`
	Cor  string `json:"cor" validate:"omitempty,hexcolor"`
}

// PaymentMethodInput creates or replaces a payment method
type PaymentMethodInput struct {
	Nome  string `json:"nome" validate:"required,max=255"`
	Ativo *bool  `json:"ativo"`
}

func activeOrDefault(b *bool) bool {
	if b == nil {
		return true
	}
	return *b
}
