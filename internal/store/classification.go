package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// DefaultListLimit caps List when no positive limit is given.
const DefaultListLimit = 100

// Classification is one recorded frame decision.
type Classification struct {
	ID         string    `json:"id"`
	Label      string    `json:"label"`
	Source     string    `json:"source"`
	Confidence float64   `json:"confidence"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// LabelCount is the number of recorded decisions for one label.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ClassificationRepository records and queries classifications.
type ClassificationRepository struct {
	db *sql.DB
}

// Classifications returns the classification repository for this store.
func (s *Store) Classifications() *ClassificationRepository {
	return &ClassificationRepository{db: s.db}
}

// Create inserts c, assigning an ID and timestamp when unset.
func (r *ClassificationRepository) Create(c *Classification) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.Exec(
		`INSERT INTO classifications (id, label, source, confidence, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Label, c.Source, c.Confidence, c.Error, c.CreatedAt,
	)
	return err
}

// GetByID retrieves a classification by its ID.
func (r *ClassificationRepository) GetByID(id string) (*Classification, error) {
	c := &Classification{}

	err := r.db.QueryRow(
		`SELECT id, label, source, confidence, error, created_at
		 FROM classifications WHERE id = ?`,
		id,
	).Scan(&c.ID, &c.Label, &c.Source, &c.Confidence, &c.Error, &c.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return c, nil
}

// List returns the most recent classifications, newest first.
func (r *ClassificationRepository) List(limit int) ([]*Classification, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := r.db.Query(
		`SELECT id, label, source, confidence, error, created_at
		 FROM classifications ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Classification
	for rows.Next() {
		c := &Classification{}
		if err := rows.Scan(&c.ID, &c.Label, &c.Source, &c.Confidence, &c.Error, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return out, nil
}

// CountByLabel returns per-label totals, most frequent first.
func (r *ClassificationRepository) CountByLabel() ([]LabelCount, error) {
	rows, err := r.db.Query(
		`SELECT label, COUNT(*) FROM classifications
		 GROUP BY label ORDER BY COUNT(*) DESC, label ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LabelCount
	for rows.Next() {
		var lc LabelCount
		if err := rows.Scan(&lc.Label, &lc.Count); err != nil {
			return nil, err
		}
		out = append(out, lc)
	}

	return out, rows.Err()
}

// Count returns the total number of recorded classifications.
func (r *ClassificationRepository) Count() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM classifications`).Scan(&n)
	return n, err
}

// DeleteBefore removes classifications older than t and returns how many
// were deleted.
func (r *ClassificationRepository) DeleteBefore(t time.Time) (int64, error) {
	result, err := r.db.Exec(`DELETE FROM classifications WHERE created_at < ?`, t.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
