package auth

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"
	"github.com/uptrace/bun/migrate"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	Validate() error
	MustValidate()
	RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error
	Migrate(ctx context.Context) error
	Users() Users
	DB() *bun.DB
	Close() error
}

// DBOptions selects the database backend
type DBOptions struct {
	Driver string
	DSN    string
	Debug  bool
}

// OpenDB opens a bun database for sqlite or postgres
func OpenDB(opts DBOptions) (*bun.DB, error) {
	var db *bun.DB

	switch strings.ToLower(strings.TrimSpace(opts.Driver)) {
	case DriverPostgres:
		sqldb, err := sql.Open("pgx", opts.DSN)
		if err != nil {
			return nil, NewInternalError(err, "failed to open postgres")
		}
		db = bun.NewDB(sqldb, pgdialect.New())
	case DriverSQLite, "":
		sqldb, err := sql.Open(sqliteshim.ShimName, opts.DSN)
		if err != nil {
			return nil, NewInternalError(err, "failed to open sqlite")
		}
		// in-memory databases only live as long as their connection
		sqldb.SetMaxOpenConns(1)
		db = bun.NewDB(sqldb, sqlitedialect.New())
	default:
		return nil, NewInternalError(nil, "unsupported database driver "+opts.Driver)
	}

	if opts.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	return db, nil
}

type mngr struct {
	db    *bun.DB
	users Users
}

// NewRepositoryManager wires the stores on db
func NewRepositoryManager(db *bun.DB, opts ...UsersOption) RepositoryManager {
	return &mngr{
		db:    db,
		users: NewUsersRepository(db, opts...),
	}
}

func (m mngr) Validate() error {
	if m.db == nil {
		return errors.New("repository database should be initialized")
	}

	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

// Migrate applies the embedded migrations that have not run yet
func (m mngr) Migrate(ctx context.Context) error {
	fsys, err := MigrationsFS()
	if err != nil {
		return NewInternalError(err, "failed to load migrations")
	}

	migrations := migrate.NewMigrations()
	if err := migrations.Discover(fsys); err != nil {
		return NewInternalError(err, "failed to discover migrations")
	}

	migrator := migrate.NewMigrator(m.db, migrations)
	if err := migrator.Init(ctx); err != nil {
		return NewInternalError(err, "failed to init migrations table")
	}

	if _, err := migrator.Migrate(ctx); err != nil {
		return NewInternalError(err, "failed to apply migrations")
	}

	return nil
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) DB() *bun.DB {
	return m.db
}

func (m mngr) Close() error {
	return m.db.Close()
}
