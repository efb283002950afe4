// Package gorm provides GORM-based database operations for venuerank.
package gorm

import (
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// runMigrations runs all database migrations using gormigrate.
func runMigrations(db *gorm.DB, embeddingDims int) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		// Migration 001: pgvector extension
		{
			ID: "001_pgvector_extension",
			Migrate: func(tx *gorm.DB) error {
				return tx.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec("DROP EXTENSION IF EXISTS vector").Error
			},
		},

		// Migration 002: Core catalog tables
		{
			ID: "002_catalog_tables",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&HotelRow{}); err != nil {
					return err
				}
				if err := tx.AutoMigrate(&EventRow{}); err != nil {
					return err
				}
				if err := tx.AutoMigrate(&GroupRow{}); err != nil {
					return err
				}
				return tx.AutoMigrate(&BookingRow{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("hotels", "events", "guest_groups", "bookings")
			},
		},

		// Migration 003: Activity tables
		{
			ID: "003_activity_tables",
			Migrate: func(tx *gorm.DB) error {
				if err := tx.AutoMigrate(&ActivityRow{}); err != nil {
					return err
				}
				return tx.AutoMigrate(&HotelActivityRow{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("activities", "hotel_activities")
			},
		},

		// Migration 004: Vectors table with cosine HNSW index. AutoMigrate
		// cannot express the vector(N) column, so it is raw SQL.
		{
			ID: "004_vectors_table",
			Migrate: func(tx *gorm.DB) error {
				sqls := []string{
					fmt.Sprintf(`CREATE TABLE IF NOT EXISTS vectors (
						namespace TEXT NOT NULL,
						doc_id TEXT NOT NULL,
						embedding vector(%d) NOT NULL,
						payload JSONB,
						PRIMARY KEY (namespace, doc_id)
					)`, embeddingDims),
					`CREATE INDEX IF NOT EXISTS idx_vectors_embedding
						ON vectors USING hnsw (embedding vector_cosine_ops)`,
				}
				for _, s := range sqls {
					if err := tx.Exec(s).Error; err != nil {
						return err
					}
				}
				return nil
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Exec("DROP TABLE IF EXISTS vectors").Error
			},
		},
	})

	return m.Migrate()
}
