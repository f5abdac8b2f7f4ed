package persistence

import (
	"strings"

	"github.com/backoffice/financeiro/internal/domain/datastore"
)

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonColumns contains the columns present in every table
var CommonColumns = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// ReceivableColumns contains the columns of recebimentos
var ReceivableColumns = withCommon(
	"cliente_id",
	"categoria_id",
	"forma_pagamento_id",
	"descricao",
	"valor_esperado",
	"valor_recebido",
	"data_emissao",
	"data_vencimento",
	"data_recebimento",
	"status",
	"tipo_recebimento",
	"parcela_atual",
	"total_parcelas",
	"observacoes",
)

// PayableColumns contains the columns of pagamentos
var PayableColumns = withCommon(
	"fornecedor_id",
	"categoria_id",
	"forma_pagamento_id",
	"descricao",
	"valor_esperado",
	"valor_pago",
	"data_emissao",
	"data_vencimento",
	"data_pagamento",
	"status",
	"tipo_pagamento",
	"parcela_atual",
	"total_parcelas",
	"observacoes",
)

// MovementColumns contains the columns of movimentacoes_diarias
var MovementColumns = withCommon(
	"tipo",
	"categoria_id",
	"forma_pagamento_id",
	"descricao",
	"valor",
	"data_transacao",
	"beneficiario",
	"responsavel",
	"observacoes",
	"comprovante_url",
)

// ClientColumns contains the columns of clientes
var ClientColumns = withCommon(
	"nome",
	"email",
	"telefone",
	"documento",
	"endereco",
	"cidade",
	"estado",
	"cep",
	"grupo_cliente",
	"ativo",
)

// SupplierColumns contains the columns of fornecedores
var SupplierColumns = withCommon(
	"nome",
	"email",
	"telefone",
	"documento",
	"endereco",
	"cidade",
	"estado",
	"cep",
	"ativo",
)

// CategoryColumns contains the columns of categorias
var CategoryColumns = withCommon("nome", "tipo", "cor")

// PaymentMethodColumns contains the columns of formas_pagamento
var PaymentMethodColumns = withCommon("nome", "ativo")

// CollectionColumns maps each collection to its column whitelist
var CollectionColumns = map[datastore.Collection]map[string]bool{
	datastore.Receivables:    ReceivableColumns,
	datastore.Payables:       PayableColumns,
	datastore.Movements:      MovementColumns,
	datastore.Clients:        ClientColumns,
	datastore.Suppliers:      SupplierColumns,
	datastore.Categories:     CategoryColumns,
	datastore.PaymentMethods: PaymentMethodColumns,
}

func withCommon(columns ...string) map[string]bool {
	out := make(map[string]bool, len(columns)+len(CommonColumns))
	for c := range CommonColumns {
		out[c] = true
	}
	for _, c := range columns {
		out[c] = true
	}
	return out
}
