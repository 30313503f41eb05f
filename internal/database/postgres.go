package database

import (
	"context"
	"fmt"

	"lecture-rag/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"
)

// PostgresIndex stores a collection in a pgvector table, one table per collection
type PostgresIndex struct {
	Pool      *pgxpool.Pool
	name      string
	dimension int
	log       *zap.Logger
}

// OpenPostgres connects to the database and creates the collection table if needed
func OpenPostgres(ctx context.Context, connStr, name string, dimension int, log *zap.Logger) (*PostgresIndex, error) {
	if err := validateCollection(name); err != nil {
		return nil, err
	}
	if dimension <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive, got %d", dimension)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	idx := &PostgresIndex{Pool: pool, name: name, dimension: dimension, log: log}
	if err := idx.initialize(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return idx, nil
}

func (db *PostgresIndex) table() string {
	return pgx.Identifier{db.name}.Sanitize()
}

// initialize sets up the extension, collection table and cosine index
func (db *PostgresIndex) initialize(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("failed to enable vector extension: %w", err)
	}

	_, err := db.Pool.Exec(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			source_file TEXT NOT NULL,
			logical_page INTEGER NOT NULL,
			physical_page INTEGER NOT NULL,
			embedding vector(%d) NOT NULL
		)
	`, db.table(), db.dimension))
	if err != nil {
		return fmt.Errorf("failed to create %s table: %w", db.name, err)
	}

	_, err = db.Pool.Exec(ctx, fmt.Sprintf(`
		CREATE INDEX IF NOT EXISTS %s ON %s
		USING hnsw (embedding vector_cosine_ops)
	`, pgx.Identifier{db.name + "_embedding_idx"}.Sanitize(), db.table()))
	if err != nil {
		return fmt.Errorf("failed to create vector index: %w", err)
	}

	return nil
}

// Upsert stores chunks in one batch, overwriting existing ids
func (db *PostgresIndex) Upsert(ctx context.Context, chunks []models.Chunk) error {
	if err := validateChunks(chunks); err != nil {
		return err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, content, source_file, logical_page, physical_page, embedding)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			source_file = EXCLUDED.source_file,
			logical_page = EXCLUDED.logical_page,
			physical_page = EXCLUDED.physical_page,
			embedding = EXCLUDED.embedding
	`, db.table())

	batch := &pgx.Batch{}
	for _, c := range chunks {
		if len(c.Embedding) != db.dimension {
			return fmt.Errorf("chunk %s has %d dimensions, collection expects %d",
				c.ID, len(c.Embedding), db.dimension)
		}
		batch.Queue(query, c.ID, c.Text, c.SourceFile, c.LogicalPage, c.PhysicalPage,
			pgvector.NewVector(c.Embedding))
	}

	if err := db.Pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to upsert chunks: %w", err)
	}
	return nil
}

// Query finds the chunks closest to vec, logging and swallowing store errors
func (db *PostgresIndex) Query(ctx context.Context, vec []float32, topK int) []models.RetrievalResult {
	results, err := db.QueryErr(ctx, vec, topK)
	if err != nil {
		db.log.Error("Vector query failed",
			zap.String("collection", db.name), zap.String("store", "postgres"), zap.Error(err))
		return []models.RetrievalResult{}
	}
	return results
}

// QueryErr finds the chunks closest to vec using the cosine operator
func (db *PostgresIndex) QueryErr(ctx context.Context, vec []float32, topK int) ([]models.RetrievalResult, error) {
	if topK <= 0 {
		return []models.RetrievalResult{}, nil
	}

	rows, err := db.Pool.Query(ctx, fmt.Sprintf(`
		SELECT id, content, source_file, logical_page, embedding <=> $1 AS distance
		FROM %s
		ORDER BY embedding <=> $1, id
		LIMIT $2
	`, db.table()), pgvector.NewVector(vec), topK)
	if err != nil {
		return nil, fmt.Errorf("failed to query similar chunks: %w", err)
	}
	defer rows.Close()

	results := []models.RetrievalResult{}
	for rows.Next() {
		var r models.RetrievalResult
		if err := rows.Scan(&r.ID, &r.Text, &r.SourceFile, &r.LogicalPage, &r.Distance); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return results, nil
}

// Clear drops the collection table and recreates it empty
func (db *PostgresIndex) Clear(ctx context.Context) error {
	if _, err := db.Pool.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, db.table())); err != nil {
		return fmt.Errorf("failed to drop %s table: %w", db.name, err)
	}
	return db.initialize(ctx)
}

// Count returns the number of rows in the collection table
func (db *PostgresIndex) Count(ctx context.Context) int {
	var n int
	if err := db.Pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, db.table())).Scan(&n); err != nil {
		db.log.Error("Count failed", zap.String("collection", db.name), zap.Error(err))
		return 0
	}
	return n
}

// Ping checks that the database is reachable
func (db *PostgresIndex) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// Close closes the database connection
func (db *PostgresIndex) Close() error {
	db.Pool.Close()
	return nil
}
