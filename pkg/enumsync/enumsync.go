package enumsync

import (
	"cmp"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/samber/lo"

	"github.com/hlop3z/enumsync/internal/dialect"
	"github.com/hlop3z/enumsync/internal/drift"
	"github.com/hlop3z/enumsync/internal/engine"
	"github.com/hlop3z/enumsync/internal/engine/runner"
	syncer "github.com/hlop3z/enumsync/internal/enumsync"
	"github.com/hlop3z/enumsync/internal/introspect"
)

// Client is the main entry point for enum reconciliation.
//
// Example:
//
//	client, err := enumsync.New(
//	    enumsync.WithDatabaseURL("postgres://localhost/mydb"),
//	    enumsync.WithSchemasDir("./schemas"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	ops, err := client.Diff(ctx)
type Client struct {
	db      *sql.DB
	ownsDB  bool
	dialect dialect.Dialect
	config  *Config
	catalog introspect.Introspector
	logger  *slog.Logger
}

// New creates a new Client with the given options.
//
// Either WithDatabaseURL or WithDB must be provided. The dialect is detected
// from the URL when not set explicitly.
func New(opts ...Option) (*Client, error) {
	cfg := &Config{
		SchemasDir:    "./schemas",
		MigrationsDir: "./migrations",
		Timeout:       30 * time.Second,
		Reconcile:     engine.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(cfg)
	}

	if cfg.DB == nil && cfg.DatabaseURL == "" {
		return nil, ErrMissingDatabaseURL
	}
	if cfg.Dialect == "" {
		cfg.Dialect = detectDialect(cfg.DatabaseURL)
	}
	d := dialect.Get(cfg.Dialect)
	if d == nil {
		return nil, fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedDialect, cfg.Dialect, strings.Join(dialect.Names(), ", "))
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	db, ownsDB := cfg.DB, false
	if db == nil {
		var err error
		if db, err = openDatabase(cfg.DatabaseURL, cfg.Dialect, cfg.Driver); err != nil {
			return nil, &ConnectionError{URL: redactURL(cfg.DatabaseURL), Dialect: cfg.Dialect, Cause: err}
		}
		ownsDB = true

		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, &ConnectionError{URL: redactURL(cfg.DatabaseURL), Dialect: cfg.Dialect, Cause: err}
		}
	}

	return &Client{
		db:      db,
		ownsDB:  ownsDB,
		dialect: d,
		config:  cfg,
		catalog: introspect.New(db, d),
		logger:  logger,
	}, nil
}

// Close closes the database connection when the client opened it.
func (c *Client) Close() error {
	if c.ownsDB && c.db != nil {
		return c.db.Close()
	}
	return nil
}

// DB returns the underlying database connection.
func (c *Client) DB() *sql.DB {
	return c.db
}

// Dialect returns the database dialect name.
func (c *Client) Dialect() string {
	return c.dialect.Name()
}

// Config returns a copy of the client configuration.
func (c *Client) Config() Config {
	return *c.config
}

// context bounds ctx with the configured timeout.
func (c *Client) context(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.config.Timeout)
}

// defaultSchema is the schema unqualified declarations resolve to.
func (c *Client) defaultSchema() string {
	return cmp.Or(c.config.Reconcile.DefaultSchema, c.dialect.DefaultSchema())
}

// schemas returns the configured schemas with "" resolved to the default.
func (c *Client) schemas() []string {
	if len(c.config.Schemas) == 0 {
		return []string{c.defaultSchema()}
	}
	def := c.defaultSchema()
	return lo.Uniq(lo.Map(c.config.Schemas, func(s string, _ int) string { return cmp.Or(s, def) }))
}

func (c *Client) comparator() *engine.Comparator {
	return engine.NewComparator(c.catalog, c.dialect, c.config.Reconcile, c.logger)
}

func (c *Client) detector() *drift.Detector {
	return drift.NewDetector(c.catalog, c.schemas(), c.config.Reconcile.IncludeName)
}

func (c *Client) runner(strict bool) *runner.Runner {
	return runner.NewRunner(c.db, c.dialect,
		runner.WithLogger(c.logger),
		runner.WithDriftDetector(c.detector()),
		runner.WithStrict(strict),
		runner.WithSyncOptions(syncer.WithDefaultSchema(c.defaultSchema())),
	)
}

// detectDialect detects the database dialect from the connection URL.
//
// Detection rules:
//   - postgres:// or postgresql:// -> postgres
//   - sqlite:// or file: or path ending with .db/.sqlite/.sqlite3 -> sqlite
func detectDialect(url string) string {
	url = strings.ToLower(url)

	switch {
	case strings.HasPrefix(url, "postgres://"),
		strings.HasPrefix(url, "postgresql://"):
		return "postgres"

	case strings.HasPrefix(url, "sqlite://"),
		strings.HasPrefix(url, "sqlite3://"),
		strings.HasPrefix(url, "file:"),
		url == ":memory:":
		return "sqlite"

	case strings.HasSuffix(url, ".db"),
		strings.HasSuffix(url, ".sqlite"),
		strings.HasSuffix(url, ".sqlite3"):
		return "sqlite"
	}

	return "postgres"
}

// driverName maps a dialect and an optional driver override to a registered
// database/sql driver.
func driverName(dialectName, driver string) (string, error) {
	switch dialectName {
	case "postgres":
		switch driver {
		case "", "postgres", "pq":
			return "postgres", nil
		case "pgx":
			return "pgx", nil
		}
		return "", fmt.Errorf("unknown postgres driver %q (use postgres or pgx)", driver)
	case "sqlite":
		return "sqlite", nil
	default:
		return "", fmt.Errorf("unsupported dialect: %s", dialectName)
	}
}

// openDatabase opens a database connection based on the dialect.
func openDatabase(url, dialectName, driver string) (*sql.DB, error) {
	name, err := driverName(dialectName, driver)
	if err != nil {
		return nil, err
	}
	dsn := url
	if dialectName == "sqlite" {
		dsn = convertSQLiteURL(url)
	}
	return sql.Open(name, dsn)
}

// convertSQLiteURL converts a sqlite:// URL to a file path, or returns the path as-is.
func convertSQLiteURL(url string) string {
	url = strings.TrimPrefix(url, "sqlite://")
	url = strings.TrimPrefix(url, "sqlite3://")
	return strings.TrimPrefix(url, "file:")
}

// redactURL removes the password from a database URL for logging.
func redactURL(url string) string {
	start := strings.Index(url, "://")
	if start == -1 {
		return url
	}
	start += 3

	end := strings.Index(url[start:], "@")
	if end == -1 {
		return url
	}
	end += start

	credentials := url[start:end]
	if colonIdx := strings.Index(credentials, ":"); colonIdx != -1 {
		user := credentials[:colonIdx]
		return url[:start] + user + ":***@" + url[end+1:]
	}

	return url
}
