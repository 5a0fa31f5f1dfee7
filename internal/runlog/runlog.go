// Package runlog provides SQLite-backed run history. The engine itself is
// stateless; the history store lives on the caller side and records each
// run's decisions, summary, and a compressed snapshot of the output.
package runlog

import (
	"database/sql"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"lukechampine.com/blake3"
	_ "modernc.org/sqlite"

	"specslice/internal/assemble"
	"specslice/internal/emit"
	"specslice/internal/opkey"
)

//go:embed schema.sql
var schemaSQL string

//go:embed pragmas.sql
var pragmasSQL string

// ErrRunNotFound is returned when a run id does not exist.
var ErrRunNotFound = errors.New("run not found")

// DB wraps a SQLite connection for run history.
type DB struct {
	conn *sql.DB
	mu   sync.RWMutex
	path string
}

// Open opens or creates a history database at dbPath.
func Open(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}

	db := &DB{conn: conn, path: dbPath}

	for _, pragma := range strings.Split(pragmasSQL, "\n") {
		pragma = strings.TrimSpace(pragma)
		if pragma == "" || strings.HasPrefix(pragma, "--") {
			continue
		}
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("applying pragma %q: %w", pragma, err)
		}
	}

	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Run is one recorded invocation.
type Run struct {
	ID         string
	CreatedAt  time.Time
	BaseLabel  string
	HeadLabel  string
	Summary    emit.Summary
	Digest     string
	OutputJSON []byte
	Decisions  []assemble.Decision
}

// Record stores a run and returns its id. outputJSON is the structured
// output form; it is stored zstd-compressed and keyed by its BLAKE3
// digest for later comparison across runs.
func (db *DB) Record(baseLabel, headLabel string, summary emit.Summary, decisions []assemble.Decision, outputJSON []byte) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	compressed, err := compress(outputJSON)
	if err != nil {
		return "", err
	}
	digest := blake3.Sum256(outputJSON)

	tx, err := db.conn.Begin()
	if err != nil {
		return "", fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	_, err = tx.Exec(`INSERT INTO runs
		(id, created_at, base_label, head_label, paths_kept, operations_kept, components_kept, unresolved_refs, output_digest, output_zstd)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, time.Now().UnixMilli(), baseLabel, headLabel,
		summary.PathsKept, summary.OperationsKept, summary.ComponentsKept, summary.UnresolvedRefs,
		hex.EncodeToString(digest[:]), compressed)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	for seq, d := range decisions {
		_, err = tx.Exec(`INSERT INTO decisions (run_id, seq, verdict, op_key, reason) VALUES (?, ?, ?, ?, ?)`,
			id, seq, string(d.Verdict), d.Key.String(), d.Reason)
		if err != nil {
			return "", fmt.Errorf("inserting decision: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return id, nil
}

// List returns recorded runs, newest first, without decision lines or
// output bytes.
func (db *DB) List(limit int) ([]*Run, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := db.conn.Query(`SELECT id, created_at, base_label, head_label,
		paths_kept, operations_kept, components_kept, unresolved_refs, output_digest
		FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var r Run
		var createdMs int64
		if err := rows.Scan(&r.ID, &createdMs, &r.BaseLabel, &r.HeadLabel,
			&r.Summary.PathsKept, &r.Summary.OperationsKept, &r.Summary.ComponentsKept,
			&r.Summary.UnresolvedRefs, &r.Digest); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.CreatedAt = time.UnixMilli(createdMs)
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

// Get returns one run with its decisions and decompressed output.
func (db *DB) Get(id string) (*Run, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	var r Run
	var createdMs int64
	var compressed []byte
	err := db.conn.QueryRow(`SELECT id, created_at, base_label, head_label,
		paths_kept, operations_kept, components_kept, unresolved_refs, output_digest, output_zstd
		FROM runs WHERE id = ?`, id).Scan(&r.ID, &createdMs, &r.BaseLabel, &r.HeadLabel,
		&r.Summary.PathsKept, &r.Summary.OperationsKept, &r.Summary.ComponentsKept,
		&r.Summary.UnresolvedRefs, &r.Digest, &compressed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading run: %w", err)
	}
	r.CreatedAt = time.UnixMilli(createdMs)

	r.OutputJSON, err = decompress(compressed)
	if err != nil {
		return nil, err
	}

	rows, err := db.conn.Query(`SELECT verdict, op_key, reason FROM decisions WHERE run_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("loading decisions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var verdict, key, reason string
		if err := rows.Scan(&verdict, &key, &reason); err != nil {
			return nil, fmt.Errorf("scanning decision: %w", err)
		}
		r.Decisions = append(r.Decisions, assemble.Decision{
			Key:     parseKey(key),
			Verdict: assemble.Verdict(verdict),
			Reason:  reason,
		})
	}
	return &r, rows.Err()
}

func parseKey(s string) opkey.Key {
	method, path, ok := strings.Cut(s, "@")
	if !ok {
		return opkey.Key{Path: s}
	}
	return opkey.New(method, path)
}

func compress(data []byte) ([]byte, error) {
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd encoder: %w", err)
	}
	defer enc.Close()
	return enc.EncodeAll(data, nil), nil
}

func decompress(data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("creating zstd decoder: %w", err)
	}
	defer dec.Close()
	out, err := dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("decompressing output: %w", err)
	}
	return out, nil
}
