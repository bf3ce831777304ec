package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/bryanwahyu/analysis-backend/internal/domain/analysis"
)

var recordColumns = []string{
	"artifact_id", "target", "category", "status",
	"critical", "high", "medium", "low", "info", "findings_total", "created_at",
}

const testID = "3f2b8c1e-6d4a-4f7b-9a1c-2e5d8f0b7a61"

func newRepo(t *testing.T) (*AnalysisRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewAnalysisRepository(db), mock
}

func TestSave(t *testing.T) {
	repo, mock := newRepo(t)
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (artifact_id) DO UPDATE SET")).
		WithArgs(testID, "https://example.com", "web", "ok",
			int64(0), int64(1), int64(1), int64(0), int64(0), int64(2), created).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Save(context.Background(), &domain.Record{
		ArtifactID: testID,
		Target:     "https://example.com",
		Category:   "web",
		Status:     domain.StatusOK,
		Counts:     domain.SeverityCounts{High: 1, Medium: 1, Total: 2},
		CreatedAt:  created,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveEmptyCategoryStoredAsDash(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO analysis_artifacts")).
		WithArgs(testID, "host-1", "-", "unsupported",
			int64(0), int64(0), int64(0), int64(0), int64(0), int64(0), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Save(context.Background(), &domain.Record{
		ArtifactID: testID,
		Target:     "host-1",
		Status:     domain.StatusUnsupported,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet(t *testing.T) {
	repo, mock := newRepo(t)
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE artifact_id = $1")).
		WithArgs(testID).
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow(testID, "host-1", "-", "unsupported", 0, 0, 0, 0, 0, 0, created))

	rec, err := repo.Get(context.Background(), testID)
	require.NoError(t, err)
	assert.Equal(t, domain.ArtifactID(testID), rec.ArtifactID)
	assert.Equal(t, "", rec.Category)
	assert.Equal(t, domain.StatusUnsupported, rec.Status)
	assert.True(t, created.Equal(rec.CreatedAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNotFound(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM analysis_artifacts")).
		WithArgs(testID).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), testID)
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
}

func TestLatestByTarget(t *testing.T) {
	repo, mock := newRepo(t)
	newer := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	older := newer.Add(-time.Hour)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE target = $1\nORDER BY created_at DESC\nLIMIT $2")).
		WithArgs("https://example.com", int64(2)).
		WillReturnRows(sqlmock.NewRows(recordColumns).
			AddRow("b", "https://example.com", "web", "ok", 0, 1, 1, 0, 0, 2, newer).
			AddRow("a", "https://example.com", "cloud", "ok", 1, 0, 0, 0, 0, 1, older))

	recs, err := repo.LatestByTarget(context.Background(), "https://example.com", 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, domain.ArtifactID("b"), recs[0].ArtifactID)
	assert.Equal(t, 2, recs[0].Counts.Total)
	assert.Equal(t, "cloud", recs[1].Category)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestByTargetQueryError(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM analysis_artifacts")).
		WillReturnError(errors.New("connection reset"))

	_, err := repo.LatestByTarget(context.Background(), "x", 5)
	assert.Error(t, err)
}

func TestEnsureSchema(t *testing.T) {
	repo, mock := newRepo(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX IF NOT EXISTS idx_analysis_target_created")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
