package finance

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/backoffice/financeiro/internal/application/listing"
	"github.com/backoffice/financeiro/internal/application/lookup"
	"github.com/backoffice/financeiro/internal/domain/datastore"
	"github.com/backoffice/financeiro/internal/domain/finance"
	"github.com/backoffice/financeiro/internal/domain/query"
	"github.com/backoffice/financeiro/internal/domain/shared"
)

// ReceiptPrefix is the object key prefix of uploaded receipts
const ReceiptPrefix = "comprovantes/"

// DefaultReceiptLinkExpiry is the lifetime of presigned receipt links
const DefaultReceiptLinkExpiry = 15 * time.Minute

// ReceiptStorage keeps movement receipts in object storage.
// Implemented by the infrastructure layer (S3 or a stub).
type ReceiptStorage interface {
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, storageKey string) error
}

// ReceiptUpload is a presigned upload target for a new receipt
type ReceiptUpload struct {
	Key       string    `json:"key"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MovementRequest is one load of the daily movements screen
type MovementRequest = listing.Request[finance.MovementField]

// MovementView is the state of one movements screen
type MovementView = listing.View[finance.DailyMovement, finance.MovementField]

// MovementService handles the daily movements (movimentações diárias) screen
type MovementService struct {
	store    datastore.Store
	resolver *lookup.Resolver
	receipts ReceiptStorage
	expiry   time.Duration
	pipeline *listing.Pipeline[finance.DailyMovement, finance.MovementField]
	opts     Options
}

// NewMovementService creates a new MovementService. A nil receipts storage
// leaves object-key receipts without a link.
func NewMovementService(store datastore.Store, resolver *lookup.Resolver, receipts ReceiptStorage, opts Options) *MovementService {
	opts = opts.withDefaults()
	s := &MovementService{
		store:    store,
		resolver: resolver,
		receipts: receipts,
		expiry:   DefaultReceiptLinkExpiry,
		opts:     opts,
	}
	s.pipeline = listing.NewPipeline(store, datastore.Movements, finance.MovementSchema,
		listing.WithEnricher[finance.DailyMovement, finance.MovementField](s.Enrich),
		listing.WithPageSize[finance.DailyMovement, finance.MovementField](opts.PageSize),
		listing.WithMetrics[finance.DailyMovement, finance.MovementField](opts.Metrics),
		listing.WithLogger[finance.DailyMovement, finance.MovementField](opts.Logger),
	)
	return s
}

// SetReceiptLinkExpiry sets the lifetime of presigned links
func (s *MovementService) SetReceiptLinkExpiry(d time.Duration) {
	if d > 0 {
		s.expiry = d
	}
}

// List returns one page of movements
func (s *MovementService) List(ctx context.Context, req MovementRequest) (query.Page[finance.DailyMovement], error) {
	if req.Today == "" {
		req.Today = s.opts.Today()
	}
	return s.pipeline.Load(ctx, req)
}

// NewView creates a stateful view of the movements screen
func (s *MovementService) NewView() *MovementView {
	return listing.NewView(s.pipeline, s.opts.Debounce, s.opts.Logger)
}

// Get returns a movement with its names and receipt link resolved
func (s *MovementService) Get(ctx context.Context, id string) (*finance.DailyMovement, error) {
	m, err := getOne[finance.DailyMovement](ctx, s.store, datastore.Movements, id)
	if err != nil {
		return nil, err
	}
	return s.enrichOne(ctx, m), nil
}

// Create validates the form, resolves typed names and inserts a movement
func (s *MovementService) Create(ctx context.Context, in CreateMovementInput) (*finance.DailyMovement, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	amount, err := parseAmount("valor", in.Valor)
	if err != nil {
		return nil, err
	}
	refs, err := resolveReferences(ctx, s.resolver, "", "", "", in.Categoria, in.FormaPagamento)
	if err != nil {
		return nil, err
	}

	row := datastore.Row{
		"tipo":               in.Tipo,
		"categoria_id":       optionalID(refs.category),
		"forma_pagamento_id": optionalID(refs.paymentMethod),
		"descricao":          in.Descricao,
		"valor":              amount,
		"data_transacao":     in.DataTransacao,
		"beneficiario":       in.Beneficiario,
		"responsavel":        in.Responsavel,
		"observacoes":        in.Observacoes,
		"comprovante_url":    strings.TrimSpace(in.Comprovante),
	}
	m, err := insertOne[finance.DailyMovement](ctx, s.store, datastore.Movements, row)
	if err != nil {
		s.opts.Logger.Error("Failed to create movement", zap.Error(err))
		return nil, err
	}
	s.opts.Logger.Info("Movement created", zap.String("id", m.ID), zap.String("tipo", string(m.Tipo)))
	return s.enrichOne(ctx, m), nil
}

// Delete removes a movement and its stored receipt. A receipt that cannot
// be removed is logged and left behind.
func (s *MovementService) Delete(ctx context.Context, id string) error {
	m, err := getOne[finance.DailyMovement](ctx, s.store, datastore.Movements, id)
	if err != nil {
		return err
	}
	if err := s.store.Remove(ctx, datastore.Movements, id); err != nil {
		return fmt.Errorf("delete movement %s: %w", id, err)
	}
	if key, ok := receiptKey(m.ComprovanteURL); ok && s.receipts != nil {
		if err := s.receipts.DeleteObject(ctx, key); err != nil {
			s.opts.Logger.Warn("Failed to delete receipt",
				zap.String("id", id),
				zap.String("key", key),
				zap.Error(err))
		}
	}
	s.opts.Logger.Info("Movement deleted", zap.String("id", id))
	return nil
}

// ReceiptUploadURL reserves an object key for a new receipt and presigns
// its upload
func (s *MovementService) ReceiptUploadURL(ctx context.Context, fileName, contentType string) (*ReceiptUpload, error) {
	if s.receipts == nil {
		return nil, fmt.Errorf("receipt storage: %w", shared.ErrStoreUnavailable)
	}
	name := path.Base(strings.TrimSpace(fileName))
	if name == "" || name == "." || name == "/" {
		return nil, shared.NewValidationError("arquivo", "nome de arquivo inválido")
	}
	key := ReceiptPrefix + uuid.NewString() + "/" + name
	url, expiresAt, err := s.receipts.GenerateUploadURL(ctx, key, contentType, s.expiry)
	if err != nil {
		return nil, fmt.Errorf("presign receipt upload: %w", err)
	}
	return &ReceiptUpload{Key: key, UploadURL: url, ExpiresAt: expiresAt}, nil
}

// Enrich fills category and payment method names and receipt links in place
func (s *MovementService) Enrich(ctx context.Context, items []finance.DailyMovement) error {
	ids := map[datastore.Collection][]string{}
	for i := range items {
		m := &items[i]
		ids[datastore.Categories] = append(ids[datastore.Categories], lookup.IDs(m.CategoriaID)...)
		ids[datastore.PaymentMethods] = append(ids[datastore.PaymentMethods], lookup.IDs(m.FormaPagamentoID)...)
	}
	names, err := nameTables(ctx, s.resolver, ids)
	for i := range items {
		m := &items[i]
		m.CategoriaNome = lookup.Name(names[datastore.Categories], m.CategoriaID)
		m.FormaPagamentoNome = lookup.Name(names[datastore.PaymentMethods], m.FormaPagamentoID)
		m.ComprovanteLink = s.receiptLink(ctx, m.ComprovanteURL)
	}
	return err
}

// receiptLink returns a URL receipt as is and presigns an object key
func (s *MovementService) receiptLink(ctx context.Context, ref string) string {
	key, ok := receiptKey(ref)
	if !ok {
		return ref
	}
	if s.receipts == nil {
		return ""
	}
	url, _, err := s.receipts.GenerateDownloadURL(ctx, key, s.expiry)
	if err != nil {
		s.opts.Logger.Warn("Failed to presign receipt", zap.String("key", key), zap.Error(err))
		return ""
	}
	return url
}

func (s *MovementService) enrichOne(ctx context.Context, m finance.DailyMovement) *finance.DailyMovement {
	items := []finance.DailyMovement{m}
	if err := s.Enrich(ctx, items); err != nil {
		s.opts.Logger.Warn("Name resolution incomplete", zap.String("id", m.ID), zap.Error(err))
	}
	return &items[0]
}

// All loads every movement dated in [from, to], names resolved
func (s *MovementService) All(ctx context.Context, from, to string) ([]finance.DailyMovement, error) {
	items, err := selectAll[finance.DailyMovement](ctx, s.store, datastore.Movements, "data_transacao", from, to)
	if err != nil {
		return nil, err
	}
	if err := s.Enrich(ctx, items); err != nil {
		s.opts.Logger.Warn("Name resolution incomplete", zap.String("collection", string(datastore.Movements)), zap.Error(err))
	}
	return items, nil
}

// receiptKey reports whether ref is an object key rather than a URL
func receiptKey(ref string) (string, bool) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return "", false
	}
	return strings.TrimPrefix(ref, "/"), true
}
