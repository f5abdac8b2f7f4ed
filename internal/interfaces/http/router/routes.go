package router

import (
	"github.com/backoffice/financeiro/internal/interfaces/http/handler"
)

// Handlers are the screen handlers mounted under the API prefix
type Handlers struct {
	Receivables *handler.ReceivableHandler
	Payables    *handler.PayableHandler
	Movements   *handler.MovementHandler
	Catalog     *handler.CatalogHandler
	Reports     *handler.ReportHandler
	System      *handler.SystemHandler
}

// FinanceGroups declares the API route table
func FinanceGroups(h Handlers) []Group {
	return []Group{
		{Name: "receivables", Prefix: "/recebimentos", Routes: []Route{
			get("", h.Receivables.List),
			post("", h.Receivables.Create),
			get("/:id", h.Receivables.Get),
			post("/:id/receber", h.Receivables.Receive),
			post("/:id/cancelar", h.Receivables.Cancel),
			del("/:id", h.Receivables.Delete),
		}},
		{Name: "payables", Prefix: "/pagamentos", Routes: []Route{
			get("", h.Payables.List),
			post("", h.Payables.Create),
			get("/:id", h.Payables.Get),
			post("/:id/pagar", h.Payables.Pay),
			post("/:id/cancelar", h.Payables.Cancel),
			del("/:id", h.Payables.Delete),
		}},
		{Name: "movements", Prefix: "/movimentacoes", Routes: []Route{
			get("", h.Movements.List),
			post("", h.Movements.Create),
			post("/comprovantes", h.Movements.ReceiptUpload),
			get("/:id", h.Movements.Get),
			del("/:id", h.Movements.Delete),
		}},
		{Name: "clients", Prefix: "/clientes", Routes: []Route{
			get("", h.Catalog.ListClients),
			post("", h.Catalog.CreateClient),
			get("/:id", h.Catalog.GetClient),
			put("/:id", h.Catalog.UpdateClient),
			del("/:id", h.Catalog.DeleteClient),
		}},
		{Name: "suppliers", Prefix: "/fornecedores", Routes: []Route{
			get("", h.Catalog.ListSuppliers),
			post("", h.Catalog.CreateSupplier),
			put("/:id", h.Catalog.UpdateSupplier),
			del("/:id", h.Catalog.DeleteSupplier),
		}},
		{Name: "categories", Prefix: "/categorias", Routes: []Route{
			get("", h.Catalog.ListCategories),
			post("", h.Catalog.CreateCategory),
			put("/:id", h.Catalog.UpdateCategory),
			del("/:id", h.Catalog.DeleteCategory),
		}},
		{Name: "payment_methods", Prefix: "/formas-pagamento", Routes: []Route{
			get("", h.Catalog.ListPaymentMethods),
			post("", h.Catalog.CreatePaymentMethod),
			put("/:id", h.Catalog.UpdatePaymentMethod),
			del("/:id", h.Catalog.DeletePaymentMethod),
		}},
		{Name: "options", Prefix: "/opcoes", Routes: []Route{
			get("/:kind", h.Catalog.Options),
		}},
		{Name: "reports", Prefix: "/relatorios", Routes: []Route{
			get("/meses", h.Reports.Months),
			get("/fluxo-caixa", h.Reports.CashFlow),
			get("/categorias", h.Reports.Categories),
			get("/recorrencia", h.Reports.Recurrence),
			get("/top-clientes", h.Reports.TopClients),
			get("/top-fornecedores", h.Reports.TopSuppliers),
			get("/classificacao-clientes", h.Reports.ClientScores),
			get("/dashboard", h.Reports.Dashboard),
		}},
		{Name: "exports", Prefix: "/exportar", Routes: []Route{
			get("/:report", h.Reports.Export),
		}},
		{Name: "system", Prefix: "/system", Routes: []Route{
			get("/info", h.System.GetSystemInfo),
			get("/health", h.System.Health),
		}},
	}
}
