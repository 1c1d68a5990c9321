// Package database implements the table-backed settings repository on gorm.
//
// The table has two meaningful columns, "key" (unique) and "value" (text).
// Absence of a key is absence of a row; no NULL rows are written.
package database

import (
	"context"
	"database/sql"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/unkn0wn-root/settings/codec"
	"github.com/unkn0wn-root/settings/repository"
)

// DefaultTable is used when no table name is configured.
const DefaultTable = "settings"

// ErrDBNil is returned when the database connection is nil.
var ErrDBNil = errors.New("database repository: nil connection")

type entry struct {
	ID    uint64 `gorm:"primaryKey"`
	Key   string `gorm:"column:key;size:191;not null;unique"`
	Value string `gorm:"column:value;type:text"`
}

// Repository stores settings as rows of a single table.
type Repository struct {
	db    *gorm.DB
	table string
	codec codec.Value
}

var _ repository.Repository = (*Repository)(nil)

func New(db *gorm.DB, table string, c codec.Value) (*Repository, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if table == "" {
		table = DefaultTable
	}
	return &Repository{db: db, table: table, codec: c}, nil
}

// Migrate creates or updates the settings table.
func Migrate(ctx context.Context, db *gorm.DB, table string) error {
	if db == nil {
		return ErrDBNil
	}
	if table == "" {
		table = DefaultTable
	}
	return db.WithContext(ctx).Table(table).AutoMigrate(&entry{})
}

// Migrate creates or updates the repository's own table.
func (r *Repository) Migrate(ctx context.Context) error { return Migrate(ctx, r.db, r.table) }

// Table returns the table name the repository reads and writes.
func (r *Repository) Table() string { return r.table }

func (r *Repository) Has(ctx context.Context, key string) (bool, error) {
	var n int64
	if err := r.scoped(r.db.WithContext(ctx)).Where(byKey(key)).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Repository) Get(ctx context.Context, key string, def any) (any, error) {
	var values []sql.NullString
	err := r.scoped(r.db.WithContext(ctx)).
		Where(byKey(key)).
		Limit(1).
		Pluck("value", &values).Error
	if err != nil {
		return nil, err
	}
	if len(values) == 0 || !values[0].Valid {
		return def, nil
	}
	v, err := r.codec.Decode(values[0].String)
	if err != nil {
		return nil, &repository.CorruptError{Key: key, Err: err}
	}
	return v, nil
}

// Set updates the row for key when one exists and inserts it otherwise.
func (r *Repository) Set(ctx context.Context, key string, value any) error {
	encoded, err := r.codec.Encode(value)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := r.scoped(tx).Where(byKey(key)).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return r.scoped(tx).Where(byKey(key)).Update("value", encoded).Error
		}
		return r.scoped(tx).Create(&entry{Key: key, Value: encoded}).Error
	})
}

func (r *Repository) Forget(ctx context.Context, key string) (bool, error) {
	res := r.scoped(r.db.WithContext(ctx)).Where(byKey(key)).Delete(&entry{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) scoped(db *gorm.DB) *gorm.DB { return db.Table(r.table) }

// "key" is reserved in MySQL; clause.Column names are quoted by the dialect.
func byKey(key string) clause.Expression {
	return clause.Eq{Column: clause.Column{Name: "key"}, Value: key}
}
