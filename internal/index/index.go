// Package index is a durable vector index over chunk embeddings.
// Entries live in a SQLite file; similarity ranking is brute-force
// cosine over all stored vectors, which is adequate for knowledge
// bases of a few thousand chunks.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite" // SQLite driver
)

// Entry is one chunk stored in the index. Entries are immutable once
// added; identifiers are caller-generated and assumed unique.
type Entry struct {
	ID     string
	Vector []float64
	Text   string
	Source string
}

// Hit is one retrieval result, most similar first when returned from Query.
type Hit struct {
	Text   string
	Source string
	Score  float64
}

// Index is a SQLite-backed append-only vector store.
type Index struct {
	db   *sql.DB
	path string
}

// Open creates the index directory and database if absent.
func Open(dataDir string) (*Index, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "index.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS chunks (
			id         TEXT PRIMARY KEY,
			embedding  BLOB NOT NULL,
			content    TEXT NOT NULL,
			source     TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Index{db: db, path: dbPath}, nil
}

// Close closes the database connection.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// Path returns the database file path.
func (ix *Index) Path() string {
	return ix.path
}

// Add appends entries in one transaction. There is no update path: a
// repeated Add appends new rows, it never overwrites.
func (ix *Index) Add(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (id, embedding, content, source) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.ID, vectorToBytes(e.Vector), e.Text, e.Source); err != nil {
			return fmt.Errorf("insert chunk %s: %w", e.ID, err)
		}
	}

	return tx.Commit()
}

// Query returns up to k entries ranked by decreasing cosine similarity
// to the given vector. An empty index yields an empty result, not an error.
func (ix *Index) Query(ctx context.Context, vector []float64, k int) ([]Hit, error) {
	if k <= 0 {
		k = 3
	}

	rows, err := ix.db.QueryContext(ctx, `SELECT embedding, content, source FROM chunks`)
	if err != nil {
		return nil, fmt.Errorf("query chunks: %w", err)
	}
	defer rows.Close()

	var hits []Hit
	for rows.Next() {
		var blob []byte
		var h Hit
		if err := rows.Scan(&blob, &h.Text, &h.Source); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		h.Score = cosineSimilarity(vector, bytesToVector(blob))
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Count returns the number of stored entries.
func (ix *Index) Count(ctx context.Context) (int, error) {
	var n int
	if err := ix.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM chunks`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return n, nil
}

// IsEmpty reports whether the index holds no entries. Used to
// short-circuit queries against an empty knowledge base.
func (ix *Index) IsEmpty(ctx context.Context) (bool, error) {
	n, err := ix.Count(ctx)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}
