package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrArtifactNotFound covers unknown identifiers, unknown suffixes and
	// missing encodings alike.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrInvalidRequest marks a malformed analyze request.
	ErrInvalidRequest = errors.New("invalid analysis request")

	// ErrPersistence is matched by every *PersistenceError.
	ErrPersistence = errors.New("artifact persistence failed")
)

// PersistenceError reports which encoding of which artifact could not be written.
type PersistenceError struct {
	ArtifactID ArtifactID
	Encoding   Format
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist artifact %s (%s): %v", e.ArtifactID, e.Encoding, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
