package finance_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	financeapp "github.com/backoffice/financeiro/internal/application/finance"
	"github.com/backoffice/financeiro/internal/application/lookup"
	"github.com/backoffice/financeiro/internal/domain/datastore"
	"github.com/backoffice/financeiro/internal/domain/finance"
	"github.com/backoffice/financeiro/internal/domain/query"
	"github.com/backoffice/financeiro/internal/domain/shared"
	"github.com/backoffice/financeiro/tests/testutil"
)

type fakeReceipts struct {
	mu        sync.Mutex
	deleted   []string
	failLinks bool
}

func (f *fakeReceipts) GenerateUploadURL(_ context.Context, key, _ string, expiresIn time.Duration) (string, time.Time, error) {
	return "https://bucket.local/upload/" + key, time.Now().Add(expiresIn), nil
}

func (f *fakeReceipts) GenerateDownloadURL(_ context.Context, key string, expiresIn time.Duration) (string, time.Time, error) {
	if f.failLinks {
		return "", time.Time{}, errors.New("presign failed")
	}
	return "https://bucket.local/" + key + "?sig=1", time.Now().Add(expiresIn), nil
}

func (f *fakeReceipts) DeleteObject(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

func newMovementService(store datastore.Store, receipts financeapp.ReceiptStorage) *financeapp.MovementService {
	return financeapp.NewMovementService(store, lookup.NewResolver(store, nil, nil), receipts, financeapp.Options{Today: fixedToday})
}

func TestMovementService_CreateAndList(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore()
	seedCatalog(store)
	receipts := &fakeReceipts{}
	svc := newMovementService(store, receipts)

	in := financeapp.CreateMovementInput{
		Tipo:          "saida",
		Descricao:     "Material de escritório",
		Categoria:     "Utilidades",
		Valor:         "89,90",
		DataTransacao: "2024-06-03",
		Comprovante:   "comprovantes/abc/nota.pdf",
	}
	m, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, finance.FlowOut, m.Tipo)
	assert.Equal(t, "Utilidades", m.CategoriaNome)
	assert.Equal(t, "https://bucket.local/comprovantes/abc/nota.pdf?sig=1", m.ComprovanteLink)
	assert.Equal(t, "-89.9", m.SignedAmount().String())

	in.Tipo, in.Descricao, in.Valor, in.Comprovante = "entrada", "Venda balcão", "150", "https://drive.example/recibo.png"
	in.Categoria = ""
	_, err = svc.Create(ctx, in)
	require.NoError(t, err)

	page, err := svc.List(ctx, financeapp.MovementRequest{Filter: query.Filter{Type: "entrada"}})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Venda balcão", page.Items[0].Descricao)
	assert.Equal(t, "https://drive.example/recibo.png", page.Items[0].ComprovanteLink)
}

func TestMovementService_CreateValidation(t *testing.T) {
	store := testutil.NewMemoryStore()
	svc := newMovementService(store, nil)

	_, err := svc.Create(context.Background(), financeapp.CreateMovementInput{
		Tipo: "transferencia", Descricao: "x", Valor: "1", DataTransacao: "2024-06-01",
	})
	var verr *shared.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "tipo", verr.Field)
	assert.Empty(t, store.Rows(datastore.Movements))
}

func TestMovementService_DeleteRemovesStoredReceipt(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore()
	store.Seed(datastore.Movements,
		datastore.Row{"id": "m1", "tipo": "saida", "descricao": "a", "valor": "1", "data_transacao": "2024-06-01", "comprovante_url": "comprovantes/x/a.pdf"},
		datastore.Row{"id": "m2", "tipo": "saida", "descricao": "b", "valor": "1", "data_transacao": "2024-06-01", "comprovante_url": "https://example.com/b.pdf"},
	)
	receipts := &fakeReceipts{}
	svc := newMovementService(store, receipts)

	require.NoError(t, svc.Delete(ctx, "m1"))
	require.NoError(t, svc.Delete(ctx, "m2"))
	assert.Equal(t, []string{"comprovantes/x/a.pdf"}, receipts.deleted)
	assert.Empty(t, store.Rows(datastore.Movements))
}

func TestMovementService_ReceiptLinks(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewMemoryStore()
	store.Seed(datastore.Movements,
		datastore.Row{"id": "m1", "tipo": "entrada", "descricao": "a", "valor": "1", "data_transacao": "2024-06-01", "comprovante_url": "comprovantes/x/a.pdf"},
	)

	t.Run("presign failure leaves no link", func(t *testing.T) {
		m, err := newMovementService(store, &fakeReceipts{failLinks: true}).Get(ctx, "m1")
		require.NoError(t, err)
		assert.Empty(t, m.ComprovanteLink)
	})

	t.Run("no storage leaves no link", func(t *testing.T) {
		m, err := newMovementService(store, nil).Get(ctx, "m1")
		require.NoError(t, err)
		assert.Empty(t, m.ComprovanteLink)
	})

	t.Run("upload url", func(t *testing.T) {
		up, err := newMovementService(store, &fakeReceipts{}).ReceiptUploadURL(ctx, "../nota fiscal.pdf", "application/pdf")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(up.Key, financeapp.ReceiptPrefix))
		assert.True(t, strings.HasSuffix(up.Key, "/nota fiscal.pdf"))
		assert.Contains(t, up.UploadURL, up.Key)
	})

	t.Run("upload without storage", func(t *testing.T) {
		_, err := newMovementService(store, nil).ReceiptUploadURL(ctx, "a.pdf", "application/pdf")
		assert.ErrorIs(t, err, shared.ErrStoreUnavailable)
	})
}
