package analysis

import (
	"io"
	"strings"

	"github.com/google/uuid"
)

// Format selects one of the two encodings of an artifact.
type Format string

const (
	FormatDocument Format = ".json"
	FormatBundle   Format = ".zip"
)

const (
	ContentTypeDocument = "application/json"
	ContentTypeBundle   = "application/zip"

	// BundleEntryName is the single entry stored inside every bundle.
	BundleEntryName = "result.json"
)

// ContentType returns the media type served for the format.
func (f Format) ContentType() string {
	if f == FormatBundle {
		return ContentTypeBundle
	}
	return ContentTypeDocument
}

// NewArtifactID returns a random (v4) identifier.
func NewArtifactID() ArtifactID {
	return ArtifactID(uuid.NewString())
}

// FileName joins the identifier and the format suffix, e.g. "<id>.zip".
func (id ArtifactID) FileName(f Format) string {
	return string(id) + string(f)
}

// DownloadPath is the public retrieval path for one encoding.
func (id ArtifactID) DownloadPath(f Format) string {
	return "/download/" + id.FileName(f)
}

// ParseArtifactID accepts a canonical uuid in either case and returns it
// lower-cased. Anything else is ErrArtifactNotFound.
func ParseArtifactID(s string) (ArtifactID, error) {
	parsed, err := uuid.Parse(s)
	if err != nil || parsed.String() != strings.ToLower(s) {
		return "", ErrArtifactNotFound
	}
	return ArtifactID(parsed.String()), nil
}

// ParseArtifactName splits "<uuid>.json" or "<uuid>.zip". Any other shape
// reports ErrArtifactNotFound so callers never touch storage with it.
func ParseArtifactName(name string) (ArtifactID, Format, error) {
	var f Format
	switch {
	case strings.HasSuffix(name, string(FormatDocument)):
		f = FormatDocument
	case strings.HasSuffix(name, string(FormatBundle)):
		f = FormatBundle
	default:
		return "", "", ErrArtifactNotFound
	}
	id, err := ParseArtifactID(strings.TrimSuffix(name, string(f)))
	if err != nil {
		return "", "", err
	}
	return id, f, nil
}

// Download is an opened artifact encoding. The caller closes Body.
type Download struct {
	Body        io.ReadCloser
	Size        int64
	ContentType string
	FileName    string
}
