package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/unkn0wn-root/settings/config"
)

// Connections is the registry of named, already opened connections that
// repositories and caches are wired to.
type Connections struct {
	Databases map[string]*gorm.DB
	Redis     map[string]goredis.UniversalClient
}

// Open opens every configured connection. Redis clients are pinged so a
// wrong address fails at startup. On error, whatever was opened is closed.
func Open(ctx context.Context, cfg config.Connections) (*Connections, error) {
	c := &Connections{
		Databases: make(map[string]*gorm.DB, len(cfg.Database)),
		Redis:     make(map[string]goredis.UniversalClient, len(cfg.Redis)),
	}
	for name, dc := range cfg.Database {
		db, err := openDatabase(dc)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("backend: database connection %q: %w", name, err)
		}
		c.Databases[strings.ToLower(name)] = db
	}
	for name, rc := range cfg.Redis {
		rdb := goredis.NewUniversalClient(&goredis.UniversalOptions{
			Addrs:    []string{rc.Addr},
			Username: rc.Username,
			Password: rc.Password,
			DB:       rc.DB,
		})
		c.Redis[strings.ToLower(name)] = rdb
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("backend: redis connection %q: %w", name, err)
		}
	}
	return c, nil
}

func openDatabase(dc config.Database) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch strings.ToLower(dc.Dialect) {
	case "sqlite", "":
		dialector = sqlite.Open(dc.DSN)
	case "postgres", "postgresql":
		dialector = postgres.Open(dc.DSN)
	case "mysql":
		dialector = mysql.Open(dc.DSN)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDialect, dc.Dialect)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	maxOpen := dc.MaxOpenConns
	// every connection to an in-memory sqlite database sees its own database
	if maxOpen <= 0 && strings.Contains(dc.DSN, ":memory:") {
		maxOpen = 1
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}
	return db, nil
}

// Close closes every connection and returns the joined errors.
func (c *Connections) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	for name, db := range c.Databases {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.Close()
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("database %q: %w", name, err))
		}
	}
	for name, rdb := range c.Redis {
		if err := rdb.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis %q: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func (c *Connections) database(name string) (*gorm.DB, error) {
	if name == "" {
		name = DefaultConnection
	}
	db, ok := lookup(c.Databases, name)
	if !ok {
		return nil, fmt.Errorf("%w: database %q", ErrUnknownConnection, name)
	}
	return db, nil
}

func (c *Connections) redis(name string) (goredis.UniversalClient, error) {
	if name == "" {
		name = DefaultConnection
	}
	rdb, ok := lookup(c.Redis, name)
	if !ok {
		return nil, fmt.Errorf("%w: redis %q", ErrUnknownConnection, name)
	}
	return rdb, nil
}

// lookup matches connection names case-insensitively. Open stores lower-cased
// names but callers may hand in their own registry with any casing.
func lookup[V any](m map[string]V, name string) (V, bool) {
	if v, ok := m[name]; ok {
		return v, true
	}
	for k, v := range m {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	var zero V
	return zero, false
}
