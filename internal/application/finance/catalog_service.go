package finance

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/backoffice/financeiro/internal/application/lookup"
	"github.com/backoffice/financeiro/internal/domain/datastore"
	"github.com/backoffice/financeiro/internal/domain/finance"
	"github.com/backoffice/financeiro/internal/domain/shared"
)

// CatalogService manages the reference data forms resolve names against:
// clients, suppliers, categories and payment methods. Every write
// invalidates the cached names of its collection.
type CatalogService struct {
	store    datastore.Store
	resolver *lookup.Resolver
	logger   *zap.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(store datastore.Store, resolver *lookup.Resolver, logger *zap.Logger) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{store: store, resolver: resolver, logger: logger}
}

// Candidates lists the {id, nome} pairs of kind for form suggestions
func (s *CatalogService) Candidates(ctx context.Context, kind datastore.Collection) ([]lookup.Candidate, error) {
	return s.resolver.Candidates(ctx, kind)
}

// ListClients returns every client ordered by name
func (s *CatalogService) ListClients(ctx context.Context) ([]finance.Client, error) {
	return listByName[finance.Client](ctx, s.store, datastore.Clients)
}

// GetClient returns a client by id
func (s *CatalogService) GetClient(ctx context.Context, id string) (*finance.Client, error) {
	c, err := getOne[finance.Client](ctx, s.store, datastore.Clients, id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateClient creates a client with a unique name
func (s *CatalogService) CreateClient(ctx context.Context, in ClientInput) (*finance.Client, error) {
	row, err := s.clientRow(ctx, "", in)
	if err != nil {
		return nil, err
	}
	return createEntry[finance.Client](ctx, s, datastore.Clients, row)
}

// UpdateClient replaces a client
func (s *CatalogService) UpdateClient(ctx context.Context, id string, in ClientInput) (*finance.Client, error) {
	row, err := s.clientRow(ctx, id, in)
	if err != nil {
		return nil, err
	}
	return updateEntry[finance.Client](ctx, s, datastore.Clients, id, row)
}

// DeleteClient deletes a client
func (s *CatalogService) DeleteClient(ctx context.Context, id string) error {
	return s.deleteEntry(ctx, datastore.Clients, id)
}

func (s *CatalogService) clientRow(ctx context.Context, id string, in ClientInput) (datastore.Row, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	name, err := s.uniqueName(ctx, datastore.Clients, id, in.Nome)
	if err != nil {
		return nil, err
	}
	return datastore.Row{
		"nome":          name,
		"email":         in.Email,
		"telefone":      in.Telefone,
		"documento":     in.Documento,
		"endereco":      in.Endereco,
		"cidade":        in.Cidade,
		"estado":        strings.ToUpper(in.Estado),
		"cep":           in.CEP,
		"grupo_cliente": strings.TrimSpace(in.GrupoCliente),
		"ativo":         activeOrDefault(in.Ativo),
	}, nil
}

// ListSuppliers returns every supplier ordered by name
func (s *CatalogService) ListSuppliers(ctx context.Context) ([]finance.Supplier, error) {
	return listByName[finance.Supplier](ctx, s.store, datastore.Suppliers)
}

// CreateSupplier creates a supplier with a unique name
func (s *CatalogService) CreateSupplier(ctx context.Context, in SupplierInput) (*finance.Supplier, error) {
	row, err := s.supplierRow(ctx, "", in)
	if err != nil {
		return nil, err
	}
	return createEntry[finance.Supplier](ctx, s, datastore.Suppliers, row)
}

// UpdateSupplier replaces a supplier
func (s *CatalogService) UpdateSupplier(ctx context.Context, id string, in SupplierInput) (*finance.Supplier, error) {
	row, err := s.supplierRow(ctx, id, in)
	if err != nil {
		return nil, err
	}
	return updateEntry[finance.Supplier](ctx, s, datastore.Suppliers, id, row)
}

// DeleteSupplier deletes a supplier
func (s *CatalogService) DeleteSupplier(ctx context.Context, id string) error {
	return s.deleteEntry(ctx, datastore.Suppliers, id)
}

func (s *CatalogService) supplierRow(ctx context.Context, id string, in SupplierInput) (datastore.Row, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	name, err := s.uniqueName(ctx, datastore.Suppliers, id, in.Nome)
	if err != nil {
		return nil, err
	}
	return datastore.Row{
		"nome":      name,
		"email":     in.Email,
		"telefone":  in.Telefone,
		"documento": in.Documento,
		"endereco":  in.Endereco,
		"cidade":    in.Cidade,
		"estado":    strings.ToUpper(in.Estado),
		"cep":       in.CEP,
		"ativo":     activeOrDefault(in.Ativo),
	}, nil
}

// ListCategories returns every category ordered by name
func (s *CatalogService) ListCategories(ctx context.Context) ([]finance.Category, error) {
	return listByName[finance.Category](ctx, s.store, datastore.Categories)
}

// CreateCategory creates a category with a unique name
func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*finance.Category, error) {
	row, err := s.categoryRow(ctx, "", in)
	if err != nil {
		return nil, err
	}
	return createEntry[finance.Category](ctx, s, datastore.Categories, row)
}

// UpdateCategory replaces a category
func (s *CatalogService) UpdateCategory(ctx context.Context, id string, in CategoryInput) (*finance.Category, error) {
	row, err := s.categoryRow(ctx, id, in)
	if err != nil {
		return nil, err
	}
	return updateEntry[finance.Category](ctx, s, datastore.Categories, id, row)
}

// DeleteCategory deletes a category
func (s *CatalogService) DeleteCategory(ctx context.Context, id string) error {
	return s.deleteEntry(ctx, datastore.Categories, id)
}

func (s *CatalogService) categoryRow(ctx context.Context, id string, in CategoryInput) (datastore.Row, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	name, err := s.uniqueName(ctx, datastore.Categories, id, in.Nome)
	if err != nil {
		return nil, err
	}
	return datastore.Row{"nome": name, "tipo": in.Tipo, "cor": in.Cor}, nil
}

// ListPaymentMethods returns every payment method ordered by name
func (s *CatalogService) ListPaymentMethods(ctx context.Context) ([]finance.PaymentMethod, error) {
	return listByName[finance.PaymentMethod](ctx, s.store, datastore.PaymentMethods)
}

// CreatePaymentMethod creates a payment method with a unique name
func (s *CatalogService) CreatePaymentMethod(ctx context.Context, in PaymentMethodInput) (*finance.PaymentMethod, error) {
	row, err := s.paymentMethodRow(ctx, "", in)
	if err != nil {
		return nil, err
	}
	return createEntry[finance.PaymentMethod](ctx, s, datastore.PaymentMethods, row)
}

// UpdatePaymentMethod replaces a payment method
func (s *CatalogService) UpdatePaymentMethod(ctx context.Context, id string, in PaymentMethodInput) (*finance.PaymentMethod, error) {
	row, err := s.paymentMethodRow(ctx, id, in)
	if err != nil {
		return nil, err
	}
	return updateEntry[finance.PaymentMethod](ctx, s, datastore.PaymentMethods, id, row)
}

// DeletePaymentMethod deletes a payment method
func (s *CatalogService) DeletePaymentMethod(ctx context.Context, id string) error {
	return s.deleteEntry(ctx, datastore.PaymentMethods, id)
}

func (s *CatalogService) paymentMethodRow(ctx context.Context, id string, in PaymentMethodInput) (datastore.Row, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}
	name, err := s.uniqueName(ctx, datastore.PaymentMethods, id, in.Nome)
	if err != nil {
		return nil, err
	}
	return datastore.Row{"nome": name, "ativo": activeOrDefault(in.Ativo)}, nil
}

// uniqueName trims typed and rejects it when another entry of kind already
// has it, since typed names must resolve to a single id
func (s *CatalogService) uniqueName(ctx context.Context, kind datastore.Collection, id, typed string) (string, error) {
	name := strings.TrimSpace(typed)
	if name == "" {
		return "", shared.NewValidationError("nome", "campo obrigatório")
	}
	opts := datastore.SelectOptions{Columns: []string{"id"}}
	opts.Where("nome", name)
	res, err := s.store.Select(ctx, kind, opts)
	if err != nil {
		return "", fmt.Errorf("check %s name: %w", kind, err)
	}
	for _, row := range res.Rows {
		if row.ID() != id {
			return "", shared.NewValidationError("nome", fmt.Sprintf("%q já cadastrado", name))
		}
	}
	return name, nil
}

func createEntry[T any](ctx context.Context, s *CatalogService, kind datastore.Collection, row datastore.Row) (*T, error) {
	item, err := insertOne[T](ctx, s.store, kind, row)
	if err != nil {
		s.logger.Error("Failed to create catalog entry", zap.String("collection", string(kind)), zap.Error(err))
		return nil, err
	}
	s.resolver.Invalidate(ctx, kind)
	return &item, nil
}

func updateEntry[T any](ctx context.Context, s *CatalogService, kind datastore.Collection, id string, row datastore.Row) (*T, error) {
	item, err := updateOne[T](ctx, s.store, kind, id, row)
	if err != nil {
		return nil, err
	}
	s.resolver.Invalidate(ctx, kind)
	return &item, nil
}

func (s *CatalogService) deleteEntry(ctx context.Context, kind datastore.Collection, id string) error {
	if err := s.store.Remove(ctx, kind, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", kind, id, err)
	}
	s.resolver.Invalidate(ctx, kind)
	s.logger.Info("Catalog entry deleted", zap.String("collection", string(kind)), zap.String("id", id))
	return nil
}

func listByName[T any](ctx context.Context, store datastore.Store, kind datastore.Collection) ([]T, error) {
	res, err := store.Select(ctx, kind, datastore.SelectOptions{
		OrderBy: &datastore.Order{Column: "nome", Ascending: true},
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return datastore.DecodeAll[T](res.Rows)
}
