// Package sqlitevec provides a SQLite-backed vector driver using sqlite-vec.
// It offers an embedded alternative to a Qdrant server for single-host
// deployments.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/voxgateco/voxgate/pkg/vector"
)

// SQLiteVecDriver implements vector.Driver using SQLite with sqlite-vec.
type SQLiteVecDriver struct {
	db         *sql.DB
	dimensions uint
	logger     *zap.Logger
}

// Config holds configuration for the SQLite vec driver.
type Config struct {
	// DBPath is the path to the SQLite database file.
	// Use ":memory:" for an in-memory database.
	DBPath string

	// Dimensions is the number of dimensions for the embedding vectors.
	Dimensions uint
}

// NewSQLiteVecDriver creates a new SQLite vector driver backed by sqlite-vec.
func NewSQLiteVecDriver(c Config, logger *zap.Logger) (*SQLiteVecDriver, error) {
	// enable connection to have sqlite-vec extension
	sqlite_vec.Auto()

	if c.DBPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	if c.Dimensions == 0 {
		return nil, fmt.Errorf("sqlite-vec embedding dimensions cannot be 0, must be configured")
	}

	db, err := sql.Open("sqlite3", c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Verify sqlite-vec is loaded
	var vecVersion string
	if err := db.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite-vec not available: %w", err)
	}

	d := &SQLiteVecDriver{
		db:         db,
		dimensions: c.Dimensions,
		logger:     logger,
	}

	if err := d.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("sqlite-vec vector driver initialized",
		zap.String("db_path", c.DBPath),
		zap.Uint("dimensions", c.Dimensions),
		zap.String("vec_version", vecVersion),
	)

	return d, nil
}

// ensureSchema creates the speaker mapping table and the vec0 virtual table.
// vec0 virtual tables use integer rowids, so a mapping table relates string
// speaker IDs to rowids.
func (d *SQLiteVecDriver) ensureSchema() error {
	_, err := d.db.Exec(`
		CREATE TABLE IF NOT EXISTS speakers (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			speaker_id TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating speakers table: %w", err)
	}

	createVec := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS speaker_embeddings USING vec0(embedding float[%d] distance_metric=cosine)`,
		d.dimensions,
	)
	if _, err := d.db.Exec(createVec); err != nil {
		return fmt.Errorf("creating vec0 table: %w", err)
	}

	return nil
}

// serializeFloat32 converts a float32 slice to a little-endian byte slice
// suitable for sqlite-vec BLOB format.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Upsert stores speakers with their embeddings.
// If a speaker with the same ID already exists, it is updated.
func (d *SQLiteVecDriver) Upsert(ctx context.Context, speakers []vector.Speaker) error {
	if len(speakers) == 0 {
		return nil
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, s := range speakers {
		embBlob := serializeFloat32(s.Embedding)

		var existingRowID int64
		err = tx.QueryRowContext(ctx,
			`SELECT rowid FROM speakers WHERE speaker_id = ?`, s.ID,
		).Scan(&existingRowID)

		switch err {
		case nil:
			// Speaker exists — update name and embedding
			if _, err := tx.ExecContext(ctx,
				`UPDATE speakers SET name = ? WHERE rowid = ?`,
				s.Name, existingRowID,
			); err != nil {
				return fmt.Errorf("updating speaker %s: %w", s.ID, err)
			}

			// Update embedding in vec0 table via DELETE + INSERT
			// (vec0 does not support UPDATE)
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM speaker_embeddings WHERE rowid = ?`, existingRowID,
			); err != nil {
				return fmt.Errorf("deleting old embedding for speaker %s: %w", s.ID, err)
			}

			if _, err := tx.ExecContext(ctx,
				`INSERT INTO speaker_embeddings(rowid, embedding) VALUES (?, ?)`,
				existingRowID, embBlob,
			); err != nil {
				return fmt.Errorf("re-inserting embedding for speaker %s: %w", s.ID, err)
			}
		case sql.ErrNoRows:
			// New speaker — insert into mapping table first to get the rowid
			result, err := tx.ExecContext(ctx,
				`INSERT INTO speakers(speaker_id, name) VALUES (?, ?)`,
				s.ID, s.Name,
			)
			if err != nil {
				return fmt.Errorf("inserting speaker %s: %w", s.ID, err)
			}

			rowID, err := result.LastInsertId()
			if err != nil {
				return fmt.Errorf("getting rowid for speaker %s: %w", s.ID, err)
			}

			if _, err := tx.ExecContext(ctx,
				`INSERT INTO speaker_embeddings(rowid, embedding) VALUES (?, ?)`,
				rowID, embBlob,
			); err != nil {
				return fmt.Errorf("inserting embedding for speaker %s: %w", s.ID, err)
			}
		default:
			return fmt.Errorf("checking for existing speaker %s: %w", s.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	d.logger.Debug("upserted speakers into sqlite-vec",
		zap.Int("count", len(speakers)),
	)

	return nil
}

// Query finds the topK most similar speakers to the given embedding.
func (d *SQLiteVecDriver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.Match, error) {
	if topK <= 0 {
		topK = 10
	}

	queryBlob := serializeFloat32(embedding)

	// KNN query via vec0 MATCH, then JOIN back for speaker_id and name.
	rows, err := d.db.QueryContext(ctx, `
		SELECT
			s.speaker_id,
			s.name,
			se.distance
		FROM speaker_embeddings se
		INNER JOIN speakers s ON s.rowid = se.rowid
		WHERE se.embedding MATCH ?
			AND se.k = ?
		ORDER BY se.distance
	`, queryBlob, topK)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

// QueryByName finds the topK most similar speakers stored under the given
// name. A KNN limit would apply before the name filter and could miss
// records, so the name subset is scored directly with vec_distance_cosine.
func (d *SQLiteVecDriver) QueryByName(ctx context.Context, embedding []float32, name string, topK int) ([]vector.Match, error) {
	if topK <= 0 {
		topK = 10
	}

	queryBlob := serializeFloat32(embedding)

	rows, err := d.db.QueryContext(ctx, `
		SELECT
			s.speaker_id,
			s.name,
			vec_distance_cosine(se.embedding, ?) AS distance
		FROM speakers s
		INNER JOIN speaker_embeddings se ON se.rowid = s.rowid
		WHERE s.name = ?
		ORDER BY distance
		LIMIT ?
	`, queryBlob, name, topK)
	if err != nil {
		return nil, fmt.Errorf("querying vectors by name: %w", err)
	}
	defer rows.Close()

	return scanMatches(rows)
}

// scanMatches converts (speaker_id, name, cosine distance) rows into Matches.
// Cosine distance is converted to similarity: score = 1 - distance.
func scanMatches(rows *sql.Rows) ([]vector.Match, error) {
	var matches []vector.Match
	for rows.Next() {
		var speakerID, name string
		var distance float64
		if err := rows.Scan(&speakerID, &name, &distance); err != nil {
			return nil, fmt.Errorf("scanning query result: %w", err)
		}

		matches = append(matches, vector.Match{
			Speaker: vector.Speaker{
				ID:   speakerID,
				Name: name,
			},
			Score: float32(1.0 - distance),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	return matches, nil
}

// Scroll lists up to limit stored speakers without their embeddings.
func (d *SQLiteVecDriver) Scroll(ctx context.Context, limit int) ([]vector.Speaker, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT speaker_id, name FROM speakers ORDER BY rowid LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing speakers: %w", err)
	}
	defer rows.Close()

	var speakers []vector.Speaker
	for rows.Next() {
		var s vector.Speaker
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("scanning speaker: %w", err)
		}
		speakers = append(speakers, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating speakers: %w", err)
	}

	return speakers, nil
}

// Count returns the number of stored speakers.
func (d *SQLiteVecDriver) Count(ctx context.Context) (uint64, error) {
	var count uint64
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM speakers`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting speakers: %w", err)
	}
	return count, nil
}

// Reset drops and recreates both tables, removing every stored speaker.
func (d *SQLiteVecDriver) Reset(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, `DROP TABLE IF EXISTS speakers`); err != nil {
		return fmt.Errorf("dropping speakers table: %w", err)
	}
	if _, err := d.db.ExecContext(ctx, `DROP TABLE IF EXISTS speaker_embeddings`); err != nil {
		return fmt.Errorf("dropping vec0 table: %w", err)
	}

	if err := d.ensureSchema(); err != nil {
		return err
	}

	d.logger.Info("sqlite-vec collection reset")

	return nil
}

// Close releases resources held by the driver.
func (d *SQLiteVecDriver) Close() error {
	return d.db.Close()
}

// Ensure SQLiteVecDriver implements vector.Driver
var _ vector.Driver = (*SQLiteVecDriver)(nil)
