package persistence

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"

	"github.com/backoffice/financeiro/internal/domain/datastore"
	"github.com/backoffice/financeiro/internal/infrastructure/persistence/models"
)

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		defaultField string
		expected     string
	}{
		{"empty string returns default", "", "id", "id"},
		{"valid field returns field", "data_vencimento", "id", "data_vencimento"},
		{"invalid field returns default", "cliente_nome", "id", "id"},
		{"sql injection attempt returns default", "id; DROP TABLE recebimentos;--", "id", "id"},
		{"case sensitive", "STATUS", "id", "id"},
		{"whitespace around valid field returns field", "  status  ", "id", "status"},
		{"field with quotes injection returns default", "status'--", "id", "id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, ReceivableColumns, tt.defaultField))
		})
	}
}

// The whitelists must track the migrated schema column for column
func TestCollectionColumns_MatchModels(t *testing.T) {
	tables := map[string]any{}
	for _, m := range models.All() {
		s, err := schema.Parse(m, &sync.Map{}, schema.NamingStrategy{})
		require.NoError(t, err)
		tables[s.Table] = s
	}

	for collection, allowed := range CollectionColumns {
		t.Run(string(collection), func(t *testing.T) {
			raw, ok := tables[string(collection)]
			require.True(t, ok, "no model for %s", collection)
			s := raw.(*schema.Schema)

			got := map[string]bool{}
			for _, name := range s.DBNames {
				got[name] = true
			}
			assert.Equal(t, allowed, got)
		})
	}
	assert.Len(t, CollectionColumns, len(models.All()))
	assert.Contains(t, CollectionColumns, datastore.Movements)
}
