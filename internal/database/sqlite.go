package database

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"lecture-rag/internal/models"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // SQLite driver
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS collections (
		name TEXT PRIMARY KEY,
		distance TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS chunks (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		text TEXT NOT NULL,
		source_file TEXT NOT NULL,
		logical_page INTEGER NOT NULL,
		physical_page INTEGER NOT NULL,
		embedding BLOB NOT NULL,
		PRIMARY KEY (collection, id)
	);
`

// SQLiteIndex keeps a collection in a local SQLite file and scans it in
// memory for nearest neighbours.
type SQLiteIndex struct {
	db   *sql.DB
	path string
	name string
	log  *zap.Logger
}

// OpenSQLite opens or creates the named collection in <dir>/index.db
func OpenSQLite(ctx context.Context, dir, name string, log *zap.Logger) (*SQLiteIndex, error) {
	if err := validateCollection(name); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dir, "index.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening index: %w", err)
	}

	idx := &SQLiteIndex{db: db, path: dbPath, name: name, log: log}
	if err := idx.initialize(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return idx, nil
}

func (s *SQLiteIndex) initialize(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("creating index schema: %w", err)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO collections (name, distance) VALUES (?, 'cosine')`, s.name)
	if err != nil {
		return fmt.Errorf("creating collection %s: %w", s.name, err)
	}
	return nil
}

// Path returns the database file path
func (s *SQLiteIndex) Path() string {
	return s.path
}

// Upsert stores chunks in a single transaction
func (s *SQLiteIndex) Upsert(ctx context.Context, chunks []models.Chunk) error {
	if err := validateChunks(chunks); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (collection, id, text, source_file, logical_page, physical_page, embedding)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (collection, id) DO UPDATE SET
			text = excluded.text,
			source_file = excluded.source_file,
			logical_page = excluded.logical_page,
			physical_page = excluded.physical_page,
			embedding = excluded.embedding
	`)
	if err != nil {
		return fmt.Errorf("preparing upsert: %w", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		_, err := stmt.ExecContext(ctx, s.name, c.ID, c.Text, c.SourceFile,
			c.LogicalPage, c.PhysicalPage, encodeEmbedding(c.Embedding))
		if err != nil {
			return fmt.Errorf("upserting chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing upsert: %w", err)
	}
	return nil
}

// Query finds the chunks closest to vec, logging and swallowing store errors
func (s *SQLiteIndex) Query(ctx context.Context, vec []float32, topK int) []models.RetrievalResult {
	results, err := s.QueryErr(ctx, vec, topK)
	if err != nil {
		s.log.Error("Vector query failed",
			zap.String("collection", s.name), zap.String("store", "sqlite"), zap.Error(err))
		return []models.RetrievalResult{}
	}
	return results
}

// QueryErr finds the chunks closest to vec by scanning the whole collection
func (s *SQLiteIndex) QueryErr(ctx context.Context, vec []float32, topK int) ([]models.RetrievalResult, error) {
	if topK <= 0 {
		return []models.RetrievalResult{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, text, source_file, logical_page, embedding
		FROM chunks
		WHERE collection = ?
	`, s.name)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	results := []models.RetrievalResult{}
	for rows.Next() {
		var (
			r    models.RetrievalResult
			blob []byte
		)
		if err := rows.Scan(&r.ID, &r.Text, &r.SourceFile, &r.LogicalPage, &blob); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		r.Distance = cosineDistance(vec, decodeEmbedding(blob))
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return nearest(results, topK), nil
}

// Clear drops the collection and recreates it empty
func (s *SQLiteIndex) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE collection = ?`, s.name); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, s.name); err != nil {
		return fmt.Errorf("deleting collection: %w", err)
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO collections (name, distance) VALUES (?, 'cosine')`, s.name)
	if err != nil {
		return fmt.Errorf("recreating collection: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing clear: %w", err)
	}
	return nil
}

// Count returns the number of chunks in the collection
func (s *SQLiteIndex) Count(ctx context.Context) int {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks WHERE collection = ?`, s.name).Scan(&n)
	if err != nil {
		s.log.Error("Count failed", zap.String("collection", s.name), zap.Error(err))
		return 0
	}
	return n
}

// Ping checks that the database file is reachable
func (s *SQLiteIndex) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLiteIndex) Close() error {
	return s.db.Close()
}

func encodeEmbedding(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeEmbedding(data []byte) []float32 {
	floats := make([]float32, len(data)/4)
	for i := range floats {
		floats[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return floats
}
