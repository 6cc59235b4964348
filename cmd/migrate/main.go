package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/config"
	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/logger"
	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/migration"
)

// sourceDir is where "create" writes new migrations when -path is not set
const sourceDir = "internal/infrastructure/migration/sql"

var errUsage = errors.New("usage")

func main() {
	var (
		migrationsPath string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "", "Read migrations from this directory instead of the embedded set")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	source := migrationsPath
	if source == "" {
		source = "embedded"
	}
	log.Info("Migration CLI started", zap.String("command", args[0]), zap.String("source", source))

	switch args[0] {
	case "create":
		err = create(log, migrationsPath, args[1:])
	case "list":
		err = list(log, migrationsPath)
	default:
		err = withMigrator(log, migrationsPath, func(m *migration.Migrator) error {
			return run(log, m, args[0], args[1:])
		})
	}

	if errors.Is(err, errUsage) {
		log.Error(err.Error())
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		log.Fatal("Migration command failed", zap.String("command", args[0]), zap.Error(err))
	}
}

func create(log *zap.Logger, dir string, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: migrate create <name> [description]", errUsage)
	}
	if dir == "" {
		dir = sourceDir
	}
	var description string
	if len(args) > 1 {
		description = args[1]
	}

	mf, err := migration.CreateMigration(dir, args[0], description)
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

func list(log *zap.Logger, path string) error {
	var fsys fs.FS = migration.Embedded
	dir := migration.EmbeddedDir
	if path != "" {
		fsys, dir = os.DirFS(path), "."
	}

	names, err := migration.ListMigrations(fsys, dir)
	if err != nil {
		return err
	}
	log.Info("Available migrations", zap.Int("count", len(names)))
	for _, name := range names {
		fmt.Println("  -", name)
	}
	return nil
}

// withMigrator opens the configured PostgreSQL database and hands a migrator
// over the embedded or on-disk migrations to fn
func withMigrator(log *zap.Logger, path string, fn func(*migration.Migrator) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if cfg.Database.Driver == "sqlite" {
		return errors.New("SQL migrations target PostgreSQL; sqlite databases use auto-migrate")
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	var m *migration.Migrator
	if path != "" {
		m, err = migration.NewFromPath(db, path, log)
	} else {
		m, err = migration.New(db, log)
	}
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer m.Close()

	return fn(m)
}

func run(log *zap.Logger, m *migration.Migrator, command string, args []string) error {
	switch command {
	case "up":
		return m.Up()

	case "down":
		return m.Down()

	case "step":
		n, err := intArg(args, "migrate step <n>")
		if err != nil {
			return err
		}
		return m.Steps(n)

	case "goto":
		v, err := intArg(args, "migrate goto <version>")
		if err != nil {
			return err
		}
		if v < 0 {
			return fmt.Errorf("%w: version must not be negative", errUsage)
		}
		return m.GoTo(uint(v))

	case "force":
		v, err := intArg(args, "migrate force <version>")
		if err != nil {
			return err
		}
		log.Warn("Forcing migration version; the schema is not changed", zap.Int("version", v))
		return m.Force(v)

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		if version == 0 {
			log.Info("No migrations applied")
			return nil
		}
		log.Info("Current migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		return nil

	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func intArg(args []string, usage string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%w: %s", errUsage, usage)
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", errUsage, args[0])
	}
	return n, nil
}

func printUsage() {
	fmt.Println(`Supplier sync database migrations

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (negative rolls back)
  goto <version>        Migrate to a specific version
  version               Show the applied version
  force <version>       Set the recorded version without running SQL
  create <name> [desc]  Create a new up/down file pair
  list                  List available migrations

Flags:
  -path string          Read migrations from a directory instead of the binary
  -log-level string     debug, info, warn or error (default info)

The database is read from PRINTSHOP_DATABASE_HOST, PRINTSHOP_DATABASE_PORT,
PRINTSHOP_DATABASE_USER, PRINTSHOP_DATABASE_PASSWORD and
PRINTSHOP_DATABASE_DBNAME, or config.toml.

Examples:
  migrate up
  migrate step -1
  migrate create add_supplier_notes "Add free-text notes to supplier inventory"`)
}
