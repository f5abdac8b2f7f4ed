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

// ReceivableRequest is one load of the receivables screen
type ReceivableRequest = listing.Request[finance.ReceivableField]

// ReceivableView is the state of one receivables screen
type ReceivableView = listing.View[finance.Receivable, finance.ReceivableField]

// ReceivableService handles the receivables (recebimentos) screen
type ReceivableService struct {
	store    datastore.Store
	resolver *lookup.Resolver
	pipeline *listing.Pipeline[finance.Receivable, finance.ReceivableField]
	opts     Options
}

// NewReceivableService creates a new ReceivableService
func NewReceivableService(store datastore.Store, resolver *lookup.Resolver, opts Options) *ReceivableService {
	opts = opts.withDefaults()
	s := &ReceivableService{store: store, resolver: resolver, opts: opts}
	s.pipeline = listing.NewPipeline(store, datastore.Receivables, finance.ReceivableSchema,
		listing.WithEnricher[finance.Receivable, finance.ReceivableField](s.Enrich),
		listing.WithPageSize[finance.Receivable, finance.ReceivableField](opts.PageSize),
		listing.WithMetrics[finance.Receivable, finance.ReceivableField](opts.Metrics),
		listing.WithLogger[finance.Receivable, finance.ReceivableField](opts.Logger),
	)
	return s
}

// List returns one page of receivables
func (s *ReceivableService) List(ctx context.Context, req ReceivableRequest) (query.Page[finance.Receivable], error) {
	if req.Today == "" {
		req.Today = s.opts.Today()
	}
	return s.pipeline.Load(ctx, req)
}

// NewView creates a stateful view of the receivables screen
func (s *ReceivableService) NewView() *ReceivableView {
	return listing.NewView(s.pipeline, s.opts.Debounce, s.opts.Logger)
}

// Get returns a receivable with its names resolved
func (s *ReceivableService) Get(ctx context.Context, id string) (*finance.Receivable, error) {
	r, err := getOne[finance.Receivable](ctx, s.store, datastore.Receivables, id)
	if err != nil {
		return nil, err
	}
	return s.enrichOne(ctx, r), nil
}

// Create validates the form, resolves typed names and inserts a pending
// receivable. Nothing is written when validation fails.
func (s *ReceivableService) Create(ctx context.Context, in CreateReceivableInput) (*finance.Receivable, error) {
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
	refs, err := resolveReferences(ctx, s.resolver, datastore.Clients, "cliente", in.Cliente, in.Categoria, in.FormaPagamento)
	if err != nil {
		return nil, err
	}

	row := datastore.Row{
		"cliente_id":         optionalID(refs.counterpart),
		"categoria_id":       optionalID(refs.category),
		"forma_pagamento_id": optionalID(refs.paymentMethod),
		"descricao":          in.Descricao,
		"valor_esperado":     amount,
		"data_emissao":       optionalDate(in.DataEmissao),
		"data_vencimento":    in.DataVencimento,
		"status":             string(finance.ReceivableStatusPending),
		"tipo_recebimento":   in.TipoRecebimento,
		"parcela_atual":      optionalInt(in.ParcelaAtual),
		"total_parcelas":     optionalInt(in.TotalParcelas),
		"observacoes":        in.Observacoes,
	}
	r, err := insertOne[finance.Receivable](ctx, s.store, datastore.Receivables, row)
	if err != nil {
		s.opts.Logger.Error("Failed to create receivable", zap.Error(err))
		return nil, err
	}
	s.opts.Logger.Info("Receivable created", zap.String("id", r.ID))
	return s.enrichOne(ctx, r), nil
}

// MarkReceived settles a pending receivable in a single update of status,
// received amount and received date
func (s *ReceivableService) MarkReceived(ctx context.Context, id string, in SettleInput) (*finance.Receivable, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	current, err := getOne[finance.Receivable](ctx, s.store, datastore.Receivables, id)
	if err != nil {
		return nil, err
	}
	if current.Status != finance.ReceivableStatusPending {
		return nil, fmt.Errorf("receivable %s is %s: %w", id, current.Status, shared.ErrInvalidState)
	}
	amount := current.ValorEsperado
	if in.Valor != "" {
		if amount, err = parseAmount("valor", in.Valor); err != nil {
			return nil, err
		}
	}

	r, err := updateOne[finance.Receivable](ctx, s.store, datastore.Receivables, id, datastore.Row{
		"status":           string(finance.ReceivableStatusReceived),
		"valor_recebido":   amount,
		"data_recebimento": settleDate(in, s.opts.Today),
	})
	if err != nil {
		return nil, err
	}
	return s.enrichOne(ctx, r), nil
}

// Cancel cancels a pending receivable
func (s *ReceivableService) Cancel(ctx context.Context, id string) (*finance.Receivable, error) {
	current, err := getOne[finance.Receivable](ctx, s.store, datastore.Receivables, id)
	if err != nil {
		return nil, err
	}
	if current.Status != finance.ReceivableStatusPending {
		return nil, fmt.Errorf("receivable %s is %s: %w", id, current.Status, shared.ErrInvalidState)
	}
	r, err := updateOne[finance.Receivable](ctx, s.store, datastore.Receivables, id, datastore.Row{
		"status": string(finance.ReceivableStatusCancelled),
	})
	if err != nil {
		return nil, err
	}
	return s.enrichOne(ctx, r), nil
}

// Delete removes a receivable
func (s *ReceivableService) Delete(ctx context.Context, id string) error {
	if err := s.store.Remove(ctx, datastore.Receivables, id); err != nil {
		return fmt.Errorf("delete receivable %s: %w", id, err)
	}
	s.opts.Logger.Info("Receivable deleted", zap.String("id", id))
	return nil
}

// Enrich fills client, category and payment method names in place
func (s *ReceivableService) Enrich(ctx context.Context, items []finance.Receivable) error {
	ids := map[datastore.Collection][]string{}
	for i := range items {
		r := &items[i]
		ids[datastore.Clients] = append(ids[datastore.Clients], lookup.IDs(r.ClienteID)...)
		ids[datastore.Categories] = append(ids[datastore.Categories], lookup.IDs(r.CategoriaID)...)
		ids[datastore.PaymentMethods] = append(ids[datastore.PaymentMethods], lookup.IDs(r.FormaPagamentoID)...)
	}
	names, err := nameTables(ctx, s.resolver, ids)
	for i := range items {
		r := &items[i]
		r.ClienteNome = lookup.Name(names[datastore.Clients], r.ClienteID)
		r.CategoriaNome = lookup.Name(names[datastore.Categories], r.CategoriaID)
		r.FormaPagamentoNome = lookup.Name(names[datastore.PaymentMethods], r.FormaPagamentoID)
	}
	return err
}

func (s *ReceivableService) enrichOne(ctx context.Context, r finance.Receivable) *finance.Receivable {
	items := []finance.Receivable{r}
	if err := s.Enrich(ctx, items); err != nil {
		s.opts.Logger.Warn("Name resolution incomplete", zap.String("id", r.ID), zap.Error(err))
	}
	return &items[0]
}

// All loads every receivable whose due date falls in [from, to], names
// resolved. Empty bounds are open.
func (s *ReceivableService) All(ctx context.Context, from, to string) ([]finance.Receivable, error) {
	items, err := selectAll[finance.Receivable](ctx, s.store, datastore.Receivables, "data_vencimento", from, to)
	if err != nil {
		return nil, err
	}
	if err := s.Enrich(ctx, items); err != nil {
		s.opts.Logger.Warn("Name resolution incomplete", zap.String("collection", string(datastore.Receivables)), zap.Error(err))
	}
	return items, nil
}
