package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/bryanwahyu/analysis-backend/internal/domain/analysis"
)

// categoryColumnWidth matches the category VARCHAR below; the full category
// stays in the stored artifacts.
const categoryColumnWidth = 64

const schema = `
CREATE TABLE IF NOT EXISTS analysis_artifacts (
  artifact_id    CHAR(36)     NOT NULL PRIMARY KEY,
  target         VARCHAR(2048) NOT NULL,
  category       VARCHAR(64)  NOT NULL,
  status         VARCHAR(16)  NOT NULL,
  critical       INT          NOT NULL DEFAULT 0,
  high           INT          NOT NULL DEFAULT 0,
  medium         INT          NOT NULL DEFAULT 0,
  low            INT          NOT NULL DEFAULT 0,
  info           INT          NOT NULL DEFAULT 0,
  findings_total INT          NOT NULL DEFAULT 0,
  created_at     DATETIME(6)  NOT NULL,
  KEY idx_analysis_target_created (target(191), created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

// AnalysisRepository implements domain.Repository on MySQL.
type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// EnsureSchema creates the analysis_artifacts table when missing.
func (r *AnalysisRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// Save insert/update satu record index
func (r *AnalysisRepository) Save(ctx context.Context, rec *domain.Record) error {
	const q = `
INSERT INTO analysis_artifacts
(artifact_id, target, category, status,
 critical, high, medium, low, info, findings_total, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 status=VALUES(status),
 critical=VALUES(critical), high=VALUES(high), medium=VALUES(medium), low=VALUES(low), info=VALUES(info),
 findings_total=VALUES(findings_total);`

	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, q,
		string(rec.ArtifactID), rec.Target, stringOrDash(truncateRunes(rec.Category, categoryColumnWidth)), stringOrDash(string(rec.Status)),
		rec.Counts.Critical, rec.Counts.High, rec.Counts.Medium, rec.Counts.Low, rec.Counts.Info, rec.Counts.Total,
		created,
	)
	return err
}

// Get by artifact id
func (r *AnalysisRepository) Get(ctx context.Context, id domain.ArtifactID) (*domain.Record, error) {
	const q = `
SELECT artifact_id, target, category, status,
       critical, high, medium, low, info, findings_total, created_at
FROM analysis_artifacts
WHERE artifact_id=? LIMIT 1;`

	rec, err := scanRecord(r.db.QueryRowContext(ctx, q, string(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrArtifactNotFound
	}
	return rec, err
}

// LatestByTarget ambil N record terbaru untuk satu target
func (r *AnalysisRepository) LatestByTarget(ctx context.Context, target string, limit int) ([]*domain.Record, error) {
	const q = `
SELECT artifact_id, target, category, status,
       critical, high, medium, low, info, findings_total, created_at
FROM analysis_artifacts
WHERE target=?
ORDER BY created_at DESC
LIMIT ?;`

	rows, err := r.db.QueryContext(ctx, q, target, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.Record, 0, limit)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.Record, error) {
	var rec domain.Record
	var id, category, status string
	if err := row.Scan(
		&id, &rec.Target, &category, &status,
		&rec.Counts.Critical, &rec.Counts.High, &rec.Counts.Medium, &rec.Counts.Low, &rec.Counts.Info, &rec.Counts.Total,
		&rec.CreatedAt,
	); err != nil {
		return nil, err
	}
	rec.ArtifactID = domain.ArtifactID(id)
	rec.Category = dashToEmpty(category)
	rec.Status = domain.Status(dashToEmpty(status))
	rec.CreatedAt = rec.CreatedAt.UTC()
	return &rec, nil
}
