package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// KVEntry is the gorm model behind the postgres backend.
type KVEntry struct {
	Key       string `gorm:"primaryKey"`
	Value     []byte `gorm:"not null"`
	ExpiresAt *int64 `gorm:"index"` // unix ms, nil = never
	UpdatedAt time.Time
}

// TableName keeps the table name stable regardless of naming strategy.
func (KVEntry) TableName() string { return "kv_entries" }

type gormKV struct {
	db  *gorm.DB
	now func() time.Time
}

// OpenPostgres connects with dsn, migrates kv_entries and returns a KV.
func OpenPostgres(dsn string) (KV, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return NewGormStore(db)
}

// NewGormStore migrates the kv_entries table on db and wraps it.
func NewGormStore(db *gorm.DB) (KV, error) {
	if err := db.AutoMigrate(&KVEntry{}); err != nil {
		return nil, err
	}
	return &gormKV{db: db, now: time.Now}, nil
}

func (g *gormKV) Get(ctx context.Context, key string) ([]byte, error) {
	var e KVEntry
	err := g.db.WithContext(ctx).Where("key = ?", key).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable("postgres get", err)
	}
	if e.ExpiresAt != nil && *e.ExpiresAt <= g.now().UnixMilli() {
		return nil, ErrNotFound
	}
	return e.Value, nil
}

func (g *gormKV) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	e := KVEntry{Key: key, Value: value, UpdatedAt: g.now()}
	if ttl > 0 {
		exp := g.now().Add(ttl).UnixMilli()
		e.ExpiresAt = &exp
	}
	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "updated_at"}),
	}).Create(&e).Error
	if err != nil {
		return unavailable("postgres put", err)
	}
	return nil
}
