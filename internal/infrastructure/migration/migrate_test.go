package migration

import (
	"io/fs"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/schema"

	"github.com/backoffice/financeiro/internal/infrastructure/persistence/models"
	"github.com/backoffice/financeiro/migrations"
)

func TestEmbeddedMigrations_ArePaired(t *testing.T) {
	ups, err := fs.Glob(migrations.FS, "*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, ups)

	for _, up := range ups {
		down := strings.TrimSuffix(up, ".up.sql") + ".down.sql"
		_, err := fs.Stat(migrations.FS, down)
		assert.NoError(t, err, "missing rollback for %s", up)
	}
}

var (
	createTable = regexp.MustCompile(`(?s)CREATE TABLE IF NOT EXISTS (\w+) \((.*?)\n\);`)
	columnName  = regexp.MustCompile(`^[a-z_]+$`)
)

// The SQL schema applied on postgres and the GORM models used on sqlite
// must declare the same columns
func TestEmbeddedMigrations_MatchModels(t *testing.T) {
	tables := map[string]map[string]bool{}
	ups, err := fs.Glob(migrations.FS, "*.up.sql")
	require.NoError(t, err)
	for _, up := range ups {
		raw, err := fs.ReadFile(migrations.FS, up)
		require.NoError(t, err)
		for _, m := range createTable.FindAllStringSubmatch(string(raw), -1) {
			cols := map[string]bool{}
			for _, line := range strings.Split(m[2], "\n") {
				fields := strings.Fields(line)
				if len(fields) >= 2 && columnName.MatchString(fields[0]) {
					cols[fields[0]] = true
				}
			}
			tables[m[1]] = cols
		}
	}

	for _, model := range models.All() {
		s, err := schema.Parse(model, &sync.Map{}, schema.NamingStrategy{})
		require.NoError(t, err)
		t.Run(s.Table, func(t *testing.T) {
			cols, ok := tables[s.Table]
			require.True(t, ok, "no CREATE TABLE for %s", s.Table)
			want := map[string]bool{}
			for _, name := range s.DBNames {
				want[name] = true
			}
			assert.Equal(t, want, cols)
		})
	}
	assert.Len(t, tables, len(models.All()))
}
