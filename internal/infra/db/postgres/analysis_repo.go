package postgres

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"

    domain "github.com/bryanwahyu/analysis-backend/internal/domain/analysis"
)

const schema = `
CREATE TABLE IF NOT EXISTS analysis_artifacts (
  artifact_id    UUID        PRIMARY KEY,
  target         TEXT        NOT NULL,
  category       TEXT        NOT NULL,
  status         TEXT        NOT NULL,
  critical       INTEGER     NOT NULL DEFAULT 0,
  high           INTEGER     NOT NULL DEFAULT 0,
  medium         INTEGER     NOT NULL DEFAULT 0,
  low            INTEGER     NOT NULL DEFAULT 0,
  info           INTEGER     NOT NULL DEFAULT 0,
  findings_total INTEGER     NOT NULL DEFAULT 0,
  created_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analysis_target_created ON analysis_artifacts (target, created_at DESC);`

type AnalysisRepository struct { db *sql.DB }

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository { return &AnalysisRepository{db: db} }

// EnsureSchema creates the table and index when missing.
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
VALUES ($1,$2,$3,$4,
        $5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (artifact_id) DO UPDATE SET
 status = EXCLUDED.status,
 critical = EXCLUDED.critical,
 high = EXCLUDED.high,
 medium = EXCLUDED.medium,
 low = EXCLUDED.low,
 info = EXCLUDED.info,
 findings_total = EXCLUDED.findings_total;`

    created := rec.CreatedAt
    if created.IsZero() { created = time.Now().UTC() }

    _, err := r.db.ExecContext(ctx, q,
        string(rec.ArtifactID), rec.Target, stringOrDash(rec.Category), stringOrDash(string(rec.Status)),
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
WHERE artifact_id = $1
LIMIT 1;`

    rec, err := scanRecord(r.db.QueryRowContext(ctx, q, string(id)))
    if errors.Is(err, sql.ErrNoRows) { return nil, domain.ErrArtifactNotFound }
    return rec, err
}

// LatestByTarget ambil N record terbaru untuk satu target
func (r *AnalysisRepository) LatestByTarget(ctx context.Context, target string, limit int) ([]*domain.Record, error) {
    const q = `
SELECT artifact_id, target, category, status,
       critical, high, medium, low, info, findings_total, created_at
FROM analysis_artifacts
WHERE target = $1
ORDER BY created_at DESC
LIMIT $2;`

    rows, err := r.db.QueryContext(ctx, q, target, limit)
    if err != nil { return nil, err }
    defer rows.Close()

    out := make([]*domain.Record, 0, limit)
    for rows.Next() {
        rec, err := scanRecord(rows)
        if err != nil { return nil, err }
        out = append(out, rec)
    }
    return out, rows.Err()
}

func scanRecord(row interface{ Scan(dest ...any) error }) (*domain.Record, error) {
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
    if category != "-" { rec.Category = category }
    if status != "-" { rec.Status = domain.Status(status) }
    rec.CreatedAt = rec.CreatedAt.UTC()
    return &rec, nil
}

func stringOrDash(s string) string {
    if strings.TrimSpace(s) == "" { return "-" }
    return s
}
