// Command migrate applies and authors the postgres schema migrations of the
// finance ledger.
package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/backoffice/financeiro/internal/infrastructure/config"
	"github.com/backoffice/financeiro/internal/infrastructure/logger"
	"github.com/backoffice/financeiro/internal/infrastructure/migration"
)

const defaultMigrationsPath = "migrations"

var errUsage = errors.New("usage")

// dbCommand runs against the configured database
type dbCommand func(m *migration.Migrator, log *zap.Logger, args []string) error

var dbCommands = map[string]dbCommand{
	"up":   func(m *migration.Migrator, _ *zap.Logger, _ []string) error { return m.Up() },
	"down": func(m *migration.Migrator, _ *zap.Logger, _ []string) error { return m.Down() },
	"step": func(m *migration.Migrator, _ *zap.Logger, args []string) error {
		n, err := strconv.Atoi(argAt(args, 0))
		if err != nil {
			return fmt.Errorf("%w: migrate step <n>", errUsage)
		}
		return m.Steps(n)
	},
	"goto": func(m *migration.Migrator, _ *zap.Logger, args []string) error {
		v, err := strconv.ParseUint(argAt(args, 0), 10, 32)
		if err != nil {
			return fmt.Errorf("%w: migrate goto <version>", errUsage)
		}
		return m.GoTo(uint(v))
	},
	"force": func(m *migration.Migrator, _ *zap.Logger, args []string) error {
		v, err := strconv.Atoi(argAt(args, 0))
		if err != nil {
			return fmt.Errorf("%w: migrate force <version>", errUsage)
		}
		return m.Force(v)
	},
	"version": func(m *migration.Migrator, log *zap.Logger, _ []string) error {
		v, dirty, err := m.Version()
		if err != nil {
			return err
		}
		log.Info("Current migration version", zap.Uint("version", v), zap.Bool("dirty", dirty))
		return nil
	},
}

func main() {
	dir := flag.String("path", "", "Read migrations from this directory instead of the embedded set")
	level := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Usage = printUsage
	flag.Parse()

	if flag.NArg() == 0 {
		printUsage()
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{Level: *level, Format: "console", TimeFormat: "2006-01-02 15:04:05"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	command, args := flag.Arg(0), flag.Args()[1:]
	if err := run(command, args, *dir, log); err != nil {
		if errors.Is(err, errUsage) {
			log.Error("Invalid arguments", zap.String("command", command), zap.Error(err))
			printUsage()
			os.Exit(2)
		}
		log.Fatal("Migration command failed", zap.String("command", command), zap.Error(err))
	}
}

func run(command string, args []string, dir string, log *zap.Logger) error {
	switch command {
	case "create":
		return create(args, dir, log)
	case "list":
		return list(dir, log)
	}

	cmd, ok := dbCommands[command]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}

	db, err := openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := openMigrator(db, dir, log)
	if err != nil {
		return err
	}
	defer m.Close()
	return cmd(m, log, args)
}

// openDatabase connects to the configured postgres database. Sqlite schemas
// are created by the server itself.
func openDatabase() (*sql.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	if cfg.Database.Driver != config.DriverPostgres || !cfg.Database.Configured() {
		return nil, fmt.Errorf("migrations need a configured postgres database, driver is %q", cfg.Database.Driver)
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

func openMigrator(db *sql.DB, dir string, log *zap.Logger) (*migration.Migrator, error) {
	if dir == "" {
		return migration.New(db, log)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve migrations path: %w", err)
	}
	return migration.NewFromDir(db, abs, log)
}

func create(args []string, dir string, log *zap.Logger) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: migrate create <name> [description]", errUsage)
	}
	mf, err := migration.CreateMigration(dirOrDefault(dir), args[0], argAt(args, 1))
	if err != nil {
		return err
	}
	log.Info("Migration created",
		zap.String("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
	return nil
}

func list(dir string, log *zap.Logger) error {
	names, err := migration.ListMigrations(dirOrDefault(dir))
	if err != nil {
		return err
	}
	log.Info("Available migrations", zap.Int("count", len(names)))
	for _, n := range names {
		fmt.Println("  -", n)
	}
	return nil
}

func dirOrDefault(path string) string {
	if path == "" {
		return defaultMigrationsPath
	}
	return path
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [flags] <command> [arguments]

Commands:
  up                    Apply every pending migration
  down                  Roll every migration back
  step <n>              Apply n migrations, negative n rolls back
  goto <version>        Migrate to version
  version               Print the current version
  force <version>       Record version without migrating, clearing the dirty flag
  create <name> [desc]  Write the next numbered up/down pair
  list                  List the migrations directory

Flags:
  -path string          Migrations directory (default: embedded; create and list use ./migrations)
  -log-level string     debug, info, warn or error (default: info)

The database is read from FIN_DATABASE_HOST, FIN_DATABASE_PORT,
FIN_DATABASE_USER, FIN_DATABASE_PASSWORD, FIN_DATABASE_DBNAME and
FIN_DATABASE_SSLMODE.`)
}
