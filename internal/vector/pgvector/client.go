// Package pgvector provides PostgreSQL+pgvector backed vector storage.
package pgvector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	pgvec "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/thebtf/venuerank/internal/vector"
)

// vectorRecord is the GORM model for the vectors table (created by migrations).
type vectorRecord struct {
	Namespace string       `gorm:"primaryKey;column:namespace"`
	DocID     string       `gorm:"primaryKey;column:doc_id"`
	Embedding pgvec.Vector `gorm:"column:embedding"`
	Payload   []byte       `gorm:"column:payload;type:jsonb"`
}

func (vectorRecord) TableName() string { return "vectors" }

// Config holds configuration for the pgvector client.
type Config struct {
	DB *gorm.DB // PostgreSQL GORM connection (required)
}

// Client implements vector.Store on PostgreSQL with the pgvector extension.
type Client struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

var _ vector.Store = (*Client)(nil)

// NewClient creates a new pgvector client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.DB == nil {
		return nil, fmt.Errorf("DB is required")
	}

	sqlDB, err := cfg.DB.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	return &Client{db: cfg.DB, sqlDB: sqlDB}, nil
}

// Upsert stores or replaces a vector via INSERT ... ON CONFLICT DO UPDATE.
func (c *Client) Upsert(ctx context.Context, namespace, id string, vec []float32, payload map[string]string) error {
	if len(vec) == 0 {
		return fmt.Errorf("upsert %s/%s: empty vector", namespace, id)
	}

	var payloadJSON []byte
	if len(payload) > 0 {
		var err error
		payloadJSON, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
	}

	rec := vectorRecord{
		Namespace: namespace,
		DocID:     id,
		Embedding: pgvec.NewVector(vec),
		Payload:   payloadJSON,
	}

	return c.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "namespace"}, {Name: "doc_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"embedding", "payload"}),
		}).
		Create(&rec).Error
}

// Fetch returns the stored vector for a namespace/id pair.
func (c *Client) Fetch(ctx context.Context, namespace, id string) ([]float32, error) {
	var rec vectorRecord
	err := c.db.WithContext(ctx).
		Where("namespace = ? AND doc_id = ?", namespace, id).
		Take(&rec).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, vector.ErrNotFound
		}
		return nil, fmt.Errorf("fetch vector %s/%s: %w", namespace, id, err)
	}
	return rec.Embedding.Slice(), nil
}

// Search performs a cosine-distance similarity search within a namespace.
func (c *Client) Search(ctx context.Context, namespace string, vec []float32, limit int, filter map[string]string) ([]vector.SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	queryVec := pgvec.NewVector(vec)

	// $1 is the query vector, $2 the namespace; filter args follow.
	args := []any{queryVec, namespace}
	argIdx := 3

	whereClauses := []string{"namespace = $2"}
	for k, v := range filter {
		whereClauses = append(whereClauses, fmt.Sprintf("payload ->> '%s' = $%d", sanitizeKey(k), argIdx))
		args = append(args, v)
		argIdx++
	}
	args = append(args, limit)

	sqlStr := fmt.Sprintf(`
		SELECT doc_id, payload, embedding <=> $1 AS distance
		FROM vectors
		WHERE %s
		ORDER BY distance
		LIMIT $%d`,
		strings.Join(whereClauses, " AND "),
		argIdx,
	)

	rows, err := c.sqlDB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, fmt.Errorf("query vectors: %w", err)
	}
	defer rows.Close()

	var results []vector.SearchResult
	for rows.Next() {
		var (
			docID       string
			payloadJSON []byte
			distance    float64
		)
		if err := rows.Scan(&docID, &payloadJSON, &distance); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		var payload map[string]string
		if len(payloadJSON) > 0 {
			if err := json.Unmarshal(payloadJSON, &payload); err != nil {
				return nil, fmt.Errorf("unmarshal payload for %s: %w", docID, err)
			}
		}

		results = append(results, vector.SearchResult{
			ID:      docID,
			Score:   vector.DistanceToSimilarity(distance),
			Payload: payload,
		})
	}
	return results, rows.Err()
}

// Delete removes a vector. Missing ids are a no-op.
func (c *Client) Delete(ctx context.Context, namespace, id string) error {
	return c.db.WithContext(ctx).
		Where("namespace = ? AND doc_id = ?", namespace, id).
		Delete(&vectorRecord{}).Error
}

// Count returns the number of vectors in a namespace.
func (c *Client) Count(ctx context.Context, namespace string) (int64, error) {
	var count int64
	err := c.db.WithContext(ctx).Model(&vectorRecord{}).
		Where("namespace = ?", namespace).
		Count(&count).Error
	return count, err
}

// IsConnected checks whether the PostgreSQL connection is alive.
func (c *Client) IsConnected() bool {
	return c.sqlDB.Ping() == nil
}

// Close releases the underlying sql.DB connection.
func (c *Client) Close() error {
	return c.sqlDB.Close()
}

// sanitizeKey guards the payload filter key interpolated into SQL.
// Payload keys are internal constants, never user input, but keeping
// the allowlist makes that assumption explicit.
func sanitizeKey(k string) string {
	var b strings.Builder
	for _, r := range k {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
