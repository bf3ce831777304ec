package analysis

import "context"

// ArtifactStore port (interface untuk penyimpanan artefak)
type ArtifactStore interface {
	// Persist writes the document and then the bundle. Both exist when it
	// returns nil; neither is visible when it returns an error.
	Persist(ctx context.Context, r *Result) error
	// Retrieve opens one encoding, or returns ErrArtifactNotFound.
	Retrieve(ctx context.Context, id ArtifactID, f Format) (*Download, error)
}

// Repository port for the optional analysis index
type Repository interface {
	Save(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id ArtifactID) (*Record, error)
	LatestByTarget(ctx context.Context, target string, limit int) ([]*Record, error)
}
