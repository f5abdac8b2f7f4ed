package handler_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	financeapp "github.com/backoffice/financeiro/internal/application/finance"
	"github.com/backoffice/financeiro/internal/application/lookup"
	reportapp "github.com/backoffice/financeiro/internal/application/report"
	"github.com/backoffice/financeiro/internal/domain/datastore"
	"github.com/backoffice/financeiro/internal/domain/shared"
	"github.com/backoffice/financeiro/internal/interfaces/http/dto"
	"github.com/backoffice/financeiro/internal/interfaces/http/handler"
	"github.com/backoffice/financeiro/internal/interfaces/http/middleware"
	"github.com/backoffice/financeiro/tests/testutil"
)

const today = "2024-06-15"

type fakeReceipts struct {
	keys []string
	err  error
}

func (f *fakeReceipts) GenerateUploadURL(_ context.Context, key, _ string, expiresIn time.Duration) (string, time.Time, error) {
	if f.err != nil {
		return "", time.Time{}, f.err
	}
	f.keys = append(f.keys, key)
	return "https://receipts.example/" + key + "?upload", time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC).Add(expiresIn), nil
}

func (f *fakeReceipts) GenerateDownloadURL(_ context.Context, key string, _ time.Duration) (string, time.Time, error) {
	return "https://receipts.example/" + key, time.Time{}, nil
}

func (f *fakeReceipts) DeleteObject(context.Context, string) error { return nil }

type testServer struct {
	engine   *gin.Engine
	store    *testutil.MemoryStore
	receipts *fakeReceipts
}

func seedLedger(store *testutil.MemoryStore) {
	store.Seed(datastore.Clients,
		datastore.Row{"id": "c1", "nome": "Acme Ltda", "ativo": true, "grupo_cliente": "Varejo"},
		datastore.Row{"id": "c2", "nome": "Beta Serviços", "ativo": true, "grupo_cliente": "Varejo"},
	)
	store.Seed(datastore.Suppliers, datastore.Row{"id": "s1", "nome": "Energia SA", "ativo": true})
	store.Seed(datastore.Categories,
		datastore.Row{"id": "k1", "nome": "Mensalidades", "tipo": "entrada"},
		datastore.Row{"id": "k2", "nome": "Utilidades", "tipo": "saida"},
	)
	store.Seed(datastore.PaymentMethods, datastore.Row{"id": "f1", "nome": "PIX", "ativo": true})
	store.Seed(datastore.Receivables,
		datastore.Row{"id": "r1", "cliente_id": "c1", "categoria_id": "k1", "descricao": "Mensalidade maio",
			"valor_esperado": "500", "valor_recebido": "480", "status": "recebido",
			"data_vencimento": "2024-05-10", "data_recebimento": "2024-05-12", "tipo_recebimento": "mensal"},
		datastore.Row{"id": "r2", "cliente_id": "c2", "descricao": "Projeto site",
			"valor_esperado": "300", "status": "pendente",
			"data_vencimento": "2024-06-05", "tipo_recebimento": "projeto"},
		datastore.Row{"id": "r3", "cliente_id": "c1", "descricao": "Mensalidade junho",
			"valor_esperado": "200", "status": "pendente",
			"data_vencimento": "2024-06-20", "tipo_recebimento": "mensal"},
	)
	store.Seed(datastore.Payables,
		datastore.Row{"id": "p1", "fornecedor_id": "s1", "categoria_id": "k2", "descricao": "Energia",
			"valor_esperado": "150", "status": "pendente",
			"data_vencimento": "2024-06-01", "tipo_pagamento": "fixo"},
	)
	store.Seed(datastore.Movements,
		datastore.Row{"id": "m1", "tipo": "entrada", "categoria_id": "k1", "descricao": "Venda", "valor": "1000", "data_transacao": "2024-06-01"},
		datastore.Row{"id": "m2", "tipo": "saida", "categoria_id": "k2", "descricao": "Luz", "valor": "300", "data_transacao": "2024-06-02"},
	)
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := testutil.NewMemoryStore()
	seedLedger(store)
	receipts := &fakeReceipts{}

	resolver := lookup.NewResolver(store, nil, nil)
	opts := financeapp.Options{Today: func() string { return today }}
	receivables := financeapp.NewReceivableService(store, resolver, opts)
	payables := financeapp.NewPayableService(store, resolver, opts)
	movements := financeapp.NewMovementService(store, resolver, receipts, opts)
	catalog := financeapp.NewCatalogService(store, resolver, nil)
	reports := reportapp.NewReportService(store, resolver, reportapp.Options{Today: func() string { return today }})
	exports := reportapp.NewExportService(reports, receivables, payables, movements, nil)

	rh := handler.NewReceivableHandler(receivables)
	ph := handler.NewPayableHandler(payables)
	mh := handler.NewMovementHandler(movements)
	ch := handler.NewCatalogHandler(catalog)
	reph := handler.NewReportHandler(reports, exports)
	sh := handler.NewSystemHandler(store, "financeiro", "test")

	r := testutil.NewEngine()
	r.Use(middleware.RequestID())

	r.GET("/health", sh.Health)
	r.GET("/system/info", sh.GetSystemInfo)

	r.GET("/recebimentos", rh.List)
	r.POST("/recebimentos", rh.Create)
	r.GET("/recebimentos/:id", rh.Get)
	r.POST("/recebimentos/:id/receber", rh.Receive)
	r.POST("/recebimentos/:id/cancelar", rh.Cancel)
	r.DELETE("/recebimentos/:id", rh.Delete)

	r.GET("/pagamentos", ph.List)
	r.POST("/pagamentos", ph.Create)
	r.POST("/pagamentos/:id/pagar", ph.Pay)

	r.GET("/movimentacoes", mh.List)
	r.POST("/movimentacoes", mh.Create)
	r.POST("/movimentacoes/comprovantes", mh.ReceiptUpload)
	r.DELETE("/movimentacoes/:id", mh.Delete)

	r.GET("/opcoes/:kind", ch.Options)
	r.GET("/clientes", ch.ListClients)
	r.POST("/clientes", ch.CreateClient)
	r.GET("/clientes/:id", ch.GetClient)
	r.POST("/categorias", ch.CreateCategory)

	r.GET("/relatorios/meses", reph.Months)
	r.GET("/relatorios/fluxo-caixa", reph.CashFlow)
	r.GET("/relatorios/top-clientes", reph.TopClients)
	r.GET("/relatorios/dashboard", reph.Dashboard)
	r.GET("/exportar/:report", reph.Export)

	return &testServer{engine: r, store: store, receipts: receipts}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return testutil.Do(t, s.engine, method, path, body, nil)
}

func TestBaseHandler_HandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", shared.NewValidationError("valor", "valor inválido"), http.StatusBadRequest, dto.ErrCodeValidation},
		{"not found", fmt.Errorf("recebimentos r9: %w", shared.ErrNotFound), http.StatusNotFound, dto.ErrCodeNotFound},
		{"invalid state", shared.ErrInvalidState, http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{"store unavailable", shared.ErrStoreUnavailable, http.StatusServiceUnavailable, dto.ErrCodeStoreUnavailable},
		{"query failed", fmt.Errorf("select: %w", shared.ErrQueryFailed), http.StatusBadGateway, dto.ErrCodeQueryFailed},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var base handler.BaseHandler
			r := testutil.NewEngine()
			r.Use(middleware.RequestID())
			r.GET("/", func(c *gin.Context) { base.HandleError(c, tt.err) })

			w := testutil.Do(t, r, http.MethodGet, "/", nil, map[string]string{middleware.RequestIDHeader: "req-1"})
			assert.Equal(t, tt.status, w.Code)
			errMap := testutil.AssertErrorResponse(t, w, tt.code)
			assert.Equal(t, "req-1", errMap["request_id"])
		})
	}
}

func TestBaseHandler_HandleErrorValidationDetails(t *testing.T) {
	var base handler.BaseHandler
	r := testutil.NewEngine()
	r.GET("/", func(c *gin.Context) { base.HandleError(c, shared.NewValidationError("data_vencimento", "data inválida")) })

	w := testutil.Do(t, r, http.MethodGet, "/", nil, nil)
	errMap := testutil.AssertErrorResponse(t, w, dto.ErrCodeValidation)
	details, ok := errMap["details"].([]any)
	require.True(t, ok)
	require.Len(t, details, 1)
	assert.Equal(t, "data_vencimento", details[0].(map[string]any)["field"])
}

func TestReceivableHandler_List(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/recebimentos?status=pendente&order_by=valor_esperado&order_dir=asc", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := testutil.DecodeJSON(t, w)
	items := resp["data"].([]any)
	require.Len(t, items, 2)
	assert.Equal(t, "r3", items[0].(map[string]any)["id"])
	assert.Equal(t, "Acme Ltda", items[0].(map[string]any)["cliente_nome"])
	assert.Equal(t, "r2", items[1].(map[string]any)["id"])

	meta := resp["meta"].(map[string]any)
	assert.Equal(t, float64(2), meta["total"])
	assert.Equal(t, float64(1), meta["page"])
}

func TestReceivableHandler_ListRejectsBadQuery(t *testing.T) {
	s := newTestServer(t)

	testutil.RunHTTPTestCases(t, s.engine, []testutil.HTTPTestCase{
		{Name: "page below one", Path: "/recebimentos?page=0", ExpectedStatus: http.StatusBadRequest},
		{Name: "page size zero", Path: "/recebimentos?page_size=0", ExpectedStatus: http.StatusBadRequest},
		{Name: "page size above limit", Path: "/recebimentos?page_size=500", ExpectedStatus: http.StatusBadRequest},
		{Name: "bad direction", Path: "/recebimentos?order_dir=up", ExpectedStatus: http.StatusBadRequest},
		{Name: "bad date", Path: "/recebimentos?start_date=15/06/2024", ExpectedStatus: http.StatusBadRequest},
	})
}

func TestReceivableHandler_CreateAndGet(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/recebimentos", map[string]any{
		"descricao":        "Consultoria",
		"cliente":          "Beta Serviços",
		"categoria":        "Mensalidades",
		"forma_pagamento":  "PIX",
		"valor_esperado":   "R$ 1.234,56",
		"data_vencimento":  "2024-07-10",
		"tipo_recebimento": "avulso",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := testutil.ResponseData(t, w).(map[string]any)
	assert.Equal(t, "c2", created["cliente_id"])
	assert.Equal(t, "1234.56", created["valor_esperado"])
	assert.Equal(t, "pendente", created["status"])

	id := created["id"].(string)
	w = s.do(t, http.MethodGet, "/recebimentos/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Beta Serviços", testutil.ResponseData(t, w).(map[string]any)["cliente_nome"])
}

func TestReceivableHandler_CreateValidation(t *testing.T) {
	s := newTestServer(t)

	testutil.RunHTTPTestCases(t, s.engine, []testutil.HTTPTestCase{
		{
			Name:   "unknown client",
			Method: http.MethodPost,
			Path:   "/recebimentos",
			Body: map[string]any{
				"descricao": "X", "cliente": "Inexistente", "valor_esperado": "10",
				"data_vencimento": "2024-07-10", "tipo_recebimento": "avulso",
			},
			ExpectedStatus: http.StatusBadRequest,
		},
		{
			Name:           "malformed json",
			Method:         http.MethodPost,
			Path:           "/recebimentos",
			Body:           "not an object",
			ExpectedStatus: http.StatusBadRequest,
		},
	})
	assert.Len(t, s.store.Rows(datastore.Receivables), 3)
}

func TestReceivableHandler_Settle(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/recebimentos/r2/receber", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	settled := testutil.ResponseData(t, w).(map[string]any)
	assert.Equal(t, "recebido", settled["status"])
	assert.Equal(t, "300", settled["valor_recebido"])
	assert.Equal(t, today, settled["data_recebimento"])

	w = s.do(t, http.MethodPost, "/recebimentos/r2/receber", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	testutil.AssertErrorResponse(t, w, dto.ErrCodeInvalidState)

	w = s.do(t, http.MethodPost, "/recebimentos/r9/receber", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReceivableHandler_SettleWithAmount(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/recebimentos/r3/receber", map[string]string{"valor": "190,00", "data": "2024-06-14"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	settled := testutil.ResponseData(t, w).(map[string]any)
	assert.Equal(t, "190", settled["valor_recebido"])
	assert.Equal(t, "2024-06-14", settled["data_recebimento"])
}

func TestReceivableHandler_CancelAndDelete(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/recebimentos/r3/cancelar", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "cancelado", testutil.ResponseData(t, w).(map[string]any)["status"])

	w = s.do(t, http.MethodDelete, "/recebimentos/r3", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Len(t, s.store.Rows(datastore.Receivables), 2)

	w = s.do(t, http.MethodDelete, "/recebimentos/r3", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPayableHandler_Pay(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/pagamentos/p1/pagar", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	paid := testutil.ResponseData(t, w).(map[string]any)
	assert.Equal(t, "pago", paid["status"])
	assert.Equal(t, "Energia SA", paid["fornecedor_nome"])

	w = s.do(t, http.MethodGet, "/pagamentos?status=pendente", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, testutil.ResponseData(t, w))
}

func TestMovementHandler_CreateAndList(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/movimentacoes", map[string]any{
		"tipo":           "saida",
		"descricao":      "Internet",
		"categoria":      "Utilidades",
		"valor":          "99,90",
		"data_transacao": "2024-06-10",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "k2", testutil.ResponseData(t, w).(map[string]any)["categoria_id"])

	w = s.do(t, http.MethodGet, "/movimentacoes?type=saida", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, testutil.ResponseData(t, w), 2)
}

func TestMovementHandler_ReceiptUpload(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/movimentacoes/comprovantes", map[string]string{
		"file_name":    "../../nota fiscal.pdf",
		"content_type": "application/pdf",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	upload := testutil.ResponseData(t, w).(map[string]any)
	key := upload["key"].(string)
	assert.True(t, strings.HasPrefix(key, financeapp.ReceiptPrefix))
	assert.True(t, strings.HasSuffix(key, "/nota fiscal.pdf"))
	assert.Equal(t, []string{key}, s.receipts.keys)

	w = s.do(t, http.MethodPost, "/movimentacoes/comprovantes", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCatalogHandler(t *testing.T) {
	s := newTestServer(t)

	testutil.RunHTTPTestCases(t, s.engine, []testutil.HTTPTestCase{
		{
			Name:           "options by kind",
			Path:           "/opcoes/clientes",
			ExpectedStatus: http.StatusOK,
			Validate: func(t *testing.T, w *httptest.ResponseRecorder) {
				opts := testutil.ResponseData(t, w).([]any)
				require.Len(t, opts, 2)
				assert.Equal(t, "Acme Ltda", opts[0].(map[string]any)["nome"])
			},
		},
		{Name: "unknown kind", Path: "/opcoes/produtos", ExpectedStatus: http.StatusNotFound},
		{Name: "client by id", Path: "/clientes/c1", ExpectedStatus: http.StatusOK},
		{Name: "missing client", Path: "/clientes/zz", ExpectedStatus: http.StatusNotFound},
		{
			Name:           "create client",
			Method:         http.MethodPost,
			Path:           "/clientes",
			Body:           map[string]any{"nome": "Gama ME", "email": "contato@gama.com.br"},
			ExpectedStatus: http.StatusCreated,
		},
		{
			Name:           "bad client email",
			Method:         http.MethodPost,
			Path:           "/clientes",
			Body:           map[string]any{"nome": "Delta", "email": "delta"},
			ExpectedStatus: http.StatusBadRequest,
		},
		{
			Name:           "category needs a flow",
			Method:         http.MethodPost,
			Path:           "/categorias",
			Body:           map[string]any{"nome": "Impostos", "tipo": "imposto"},
			ExpectedStatus: http.StatusBadRequest,
		},
	})

	w := s.do(t, http.MethodGet, "/clientes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, testutil.ResponseData(t, w), 3)
}

func TestReportHandler(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/relatorios/meses?start_date=2024-01&end_date=2024-03", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Len(t, testutil.ResponseData(t, w), 3)

	w = s.do(t, http.MethodGet, "/relatorios/fluxo-caixa?kind=realizado&start_date=2024-05&end_date=2024-06", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	cf := testutil.ResponseData(t, w).(map[string]any)
	assert.Equal(t, "realizado", cf["kind"])

	w = s.do(t, http.MethodGet, "/relatorios/fluxo-caixa?kind=imaginario", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/relatorios/top-clientes", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/relatorios/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, testutil.ResponseData(t, w), "summary")
}

func TestReportHandler_Export(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/exportar/recebimentos", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	disposition := w.Header().Get("Content-Disposition")
	assert.True(t, strings.HasPrefix(disposition, `attachment; filename="recebimentos-`))
	assert.True(t, strings.HasSuffix(disposition, `.csv"`))
	assert.True(t, strings.HasPrefix(w.Body.String(), "\ufeff"))
	assert.Contains(t, w.Body.String(), ";")

	w = s.do(t, http.MethodGet, "/exportar/movimentacoes?format=xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, strings.HasSuffix(w.Header().Get("Content-Disposition"), `.xlsx"`))
	assert.True(t, strings.HasPrefix(w.Body.String(), "PK"))

	w = s.do(t, http.MethodGet, "/exportar/balancete", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	testutil.AssertErrorResponse(t, w, dto.ErrCodeNotFound)
}

func TestSystemHandler_Health(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	health := testutil.ResponseData(t, w).(map[string]any)
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, handler.StoreOK, health["store"])

	s.store.FailWith(datastore.Categories, shared.ErrStoreUnavailable)
	w = s.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, handler.StoreUnconfigured, testutil.ResponseData(t, w).(map[string]any)["store"])

	s.store.FailWith(datastore.Categories, fmt.Errorf("select: %w", shared.ErrQueryFailed))
	w = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	health = testutil.DecodeJSON(t, w)["data"].(map[string]any)
	assert.Equal(t, "unhealthy", health["status"])
	assert.Equal(t, handler.StoreError, health["store"])
}

func TestSystemHandler_Info(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/system/info", nil)
	require.Equal(t, http.StatusOK, w.Code)
	info := testutil.ResponseData(t, w).(map[string]any)
	assert.Equal(t, "financeiro", info["name"])
	assert.Equal(t, "test", info["version"])
}
