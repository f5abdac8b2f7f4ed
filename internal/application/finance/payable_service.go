package finance

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/backoffice/financeiro/internal/application/listing"
	"github.com/backoffice/financeiro/internal/application/lookup"
	"github.com/backoffice/financeiro/internal/domain/datastore"
	"github.com/backoffice/financeiro/internal/domain/finance"
	"github.com/backoffice/financeiro/internal/domain/query"
	"github.com/backoffice/financeiro/internal/domain/shared"
)

// PayableRequest is one load of the payables screen
type PayableRequest = listing.Request[finance.PayableField]

// PayableView is the state of one payables screen
type PayableView = listing.View[finance.Payable, finance.PayableField]

// PayableService handles the payables (pagamentos) screen
type PayableService struct {
	store    datastore.Store
	resolver *lookup.Resolver
	pipeline *listing.Pipeline[finance.Payable, finance.PayableField]
	opts     Options
}

// NewPayableService creates a new PayableService
func NewPayableService(store datastore.Store, resolver *lookup.Resolver, opts Options) *PayableService {
	opts = opts.withDefaults()
	s := &PayableService{store: store, resolver: resolver, opts: opts}
	s.pipeline = listing.NewPipeline(store, datastore.Payables, finance.PayableSchema,
		listing.WithEnricher[finance.Payable, finance.PayableField](s.Enrich),
		listing.WithPageSize[finance.Payable, finance.PayableField](opts.PageSize),
		listing.WithMetrics[finance.Payable, finance.PayableField](opts.Metrics),
		listing.WithLogger[finance.Payable, finance.PayableField](opts.Logger),
	)
	return s
}

// List returns one page of payables
func (s *PayableService) List(ctx context.Context, req PayableRequest) (query.Page[finance.Payable], error) {
	if req.Today == "" {
		req.Today = s.opts.Today()
	}
	return s.pipeline.Load(ctx, req)
}

// NewView creates a stateful view of the payables screen
func (s *PayableService) NewView() *PayableView {
	return listing.NewView(s.pipeline, s.opts.Debounce, s.opts.Logger)
}

// Get returns a payable with its names resolved
func (s *PayableService) Get(ctx context.Context, id string) (*finance.Payable, error) {
	p, err := getOne[finance.Payable](ctx, s.store, datastore.Payables, id)
	if err != nil {
		return nil, err
	}
	return s.enrichOne(ctx, p), nil
}

// Create validates the form, resolves typed names and inserts a pending
// payable. Nothing is written when validation fails.
func (s *PayableService) Create(ctx context.Context, in CreatePayableInput) (*finance.Payable, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	if err := checkInstallments(in.ParcelaAtual, in.TotalParcelas); err != nil {
		return nil, err
	}
	amount, err := parseAmount("valor_esperado", in.ValorEsperado)
	if err != nil {
		return nil, err
	}
	refs, err := resolveReferences(ctx, s.resolver, datastore.Suppliers, "fornecedor", in.Fornecedor, in.Categoria, in.FormaPagamento)
	if err != nil {
		return nil, err
	}

	row := datastore.Row{
		"fornecedor_id":      optionalID(refs.counterpart),
		"categoria_id":       optionalID(refs.category),
		"forma_pagamento_id": optionalID(refs.paymentMethod),
		"descricao":          in.Descricao,
		"valor_esperado":     amount,
		"data_emissao":       optionalDate(in.DataEmissao),
		"data_vencimento":    in.DataVencimento,
		"status":             string(finance.PayableStatusPending),
		"tipo_pagamento":     in.TipoPagamento,
		"parcela_atual":      optionalInt(in.ParcelaAtual),
		"total_parcelas":     optionalInt(in.TotalParcelas),
		"observacoes":        in.Observacoes,
	}
	p, err := insertOne[finance.Payable](ctx, s.store, datastore.Payables, row)
	if err != nil {
		s.opts.Logger.Error("Failed to create payable", zap.Error(err))
		return nil, err
	}
	s.opts.Logger.Info("Payable created", zap.String("id", p.ID))
	return s.enrichOne(ctx, p), nil
}

// MarkPaid settles a pending payable in a single update of status,
// paid amount and payment date
func (s *PayableService) MarkPaid(ctx context.Context, id string, in SettleInput) (*finance.Payable, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	current, err := getOne[finance.Payable](ctx, s.store, datastore.Payables, id)
	if err != nil {
		return nil, err
	}
	if current.Status != finance.PayableStatusPending {
		return nil, fmt.Errorf("payable %s is %s: %w", id, current.Status, shared.ErrInvalidState)
	}
	amount := current.ValorEsperado
	if in.Valor != "" {
		if amount, err = parseAmount("valor", in.Valor); err != nil {
			return nil, err
		}
	}

	p, err := updateOne[finance.Payable](ctx, s.store, datastore.Payables, id, datastore.Row{
		"status":         string(finance.PayableStatusPaid),
		"valor_pago":     amount,
		"data_pagamento": settleDate(in, s.opts.Today),
	})
	if err != nil {
		return nil, err
	}
	return s.enrichOne(ctx, p), nil
}

// Cancel cancels a pending payable
func (s *PayableService) Cancel(ctx context.Context, id string) (*finance.Payable, error) {
	current, err := getOne[finance.Payable](ctx, s.store, datastore.Payables, id)
	if err != nil {
		return nil, err
	}
	if current.Status != finance.PayableStatusPending {
		return nil, fmt.Errorf("payable %s is %s: %w", id, current.Status, shared.ErrInvalidState)
	}
	p, err := updateOne[finance.Payable](ctx, s.store, datastore.Payables, id, datastore.Row{
		"status": string(finance.PayableStatusCancelled),
	})
	if err != nil {
		return nil, err
	}
	return s.enrichOne(ctx, p), nil
}

// Delete removes a payable
func (s *PayableService) Delete(ctx context.Context, id string) error {
	if err := s.store.Remove(ctx, datastore.Payables, id); err != nil {
		return fmt.Errorf("delete payable %s: %w", id, err)
	}
	s.opts.Logger.Info("Payable deleted", zap.String("id", id))
	return nil
}

// Enrich fills supplier, category and payment method names in place
func (s *PayableService) Enrich(ctx context.Context, items []finance.Payable) error {
	ids := map[datastore.Collection][]string{}
	for i := range items {
		p := &items[i]
		ids[datastore.Suppliers] = append(ids[datastore.Suppliers], lookup.IDs(p.FornecedorID)...)
		ids[datastore.Categories] = append(ids[datastore.Categories], lookup.IDs(p.CategoriaID)...)
		ids[datastore.PaymentMethods] = append(ids[datastore.PaymentMethods], lookup.IDs(p.FormaPagamentoID)...)
	}
	names, err := nameTables(ctx, s.resolver, ids)
	for i := range items {
		p := &items[i]
		p.FornecedorNome = lookup.Name(names[datastore.Suppliers], p.FornecedorID)
		p.CategoriaNome = lookup.Name(names[datastore.Categories], p.CategoriaID)
		p.FormaPagamentoNome = lookup.Name(names[datastore.PaymentMethods], p.FormaPagamentoID)
	}
	return err
}

func (s *PayableService) enrichOne(ctx context.Context, p finance.Payable) *finance.Payable {
	items := []finance.Payable{p}
	if err := s.Enrich(ctx, items); err != nil {
		s.opts.Logger.Warn("Name resolution incomplete", zap.String("id", p.ID), zap.Error(err))
	}
	return &items[0]
}

// All loads every payable whose due date falls in [from, to], names
// resolved. Empty bounds are open.
func (s *PayableService) All(ctx context.Context, from, to string) ([]finance.Payable, error) {
	items, err := selectAll[finance.Payable](ctx, s.store, datastore.Payables, "data_vencimento", from, to)
	if err != nil {
		return nil, err
	}
	if err := s.Enrich(ctx, items); err != nil {
		s.opts.Logger.Warn("Name resolution incomplete", zap.String("collection", string(datastore.Payables)), zap.Error(err))
	}
	return items, nil
}
