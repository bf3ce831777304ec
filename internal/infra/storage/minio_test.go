package storage

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"

	"github.com/bryanwahyu/analysis-backend/internal/domain/analysis"
)

func TestObjectStoreKey(t *testing.T) {
	id := analysis.ArtifactID("0b6c3f8e-6a53-4a43-9d7e-3d1f1c0d8a11")

	s := &ObjectStore{prefix: "analyses"}
	assert.Equal(t, "analyses/0b6c3f8e-6a53-4a43-9d7e-3d1f1c0d8a11.json", s.key(id, analysis.FormatDocument))
	assert.Equal(t, "analyses/0b6c3f8e-6a53-4a43-9d7e-3d1f1c0d8a11.zip", s.key(id, analysis.FormatBundle))

	bare := &ObjectStore{}
	assert.Equal(t, "0b6c3f8e-6a53-4a43-9d7e-3d1f1c0d8a11.zip", bare.key(id, analysis.FormatBundle))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(minio.ErrorResponse{Code: "NoSuchKey"}))
	assert.True(t, isNotFound(minio.ErrorResponse{StatusCode: http.StatusNotFound}))
	assert.False(t, isNotFound(minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}))
	assert.False(t, isNotFound(errors.New("connection refused")))
}

func TestObjectStoreRejectsBeforeNetwork(t *testing.T) {
	s := &ObjectStore{}
	ctx := context.Background()

	err := s.Persist(ctx, &analysis.Result{})
	assert.ErrorIs(t, err, analysis.ErrPersistence)

	_, err = s.Retrieve(ctx, analysis.NewArtifactID(), analysis.Format(".txt"))
	assert.ErrorIs(t, err, analysis.ErrArtifactNotFound)
}
