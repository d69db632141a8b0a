// Package store holds the gorm-backed repositories for the storefront.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/judyrop/storefront/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
	ErrInUse     = errors.New("record is still referenced")
)

// Open connects to postgres or sqlite. SQLite is limited to one open
// connection so in-memory databases survive across queries.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := OpenDialector(dialector)
	if err != nil {
		return nil, err
	}

	if driver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}
	return db, nil
}

// OpenDialector opens db with driver errors translated to gorm's
// ErrDuplicatedKey and ErrForeignKeyViolated.
func OpenDialector(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Store groups the repositories that share one *gorm.DB, which may be a
// transaction.
type Store struct {
	db *gorm.DB

	Categories *CategoryRepository
	Products   *ProductRepository
	Users      *UserRepository
	Orders     *OrderRepository
}

func New(db *gorm.DB) *Store {
	return &Store{
		db:         db,
		Categories: &CategoryRepository{db: db},
		Products:   &ProductRepository{db: db},
		Users:      &UserRepository{db: db},
		Orders:     &OrderRepository{db: db},
	}
}

// Transaction runs fn against a Store bound to a single transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func translate(err error, op string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	case errors.Is(err, gorm.ErrForeignKeyViolated), isSQLiteRestrict(err):
		return ErrInUse
	default:
		return fmt.Errorf("failed to %s: %w", op, err)
	}
}

// isSQLiteRestrict reports an ON DELETE RESTRICT violation. SQLite raises
// those as trigger constraints, which the driver does not translate.
func isSQLiteRestrict(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintTrigger &&
		strings.Contains(sqliteErr.Error(), "FOREIGN KEY constraint failed")
}
