package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/bryanwahyu/analysis-backend/internal/domain/analysis"
)

// EncodeDocument serializes the full result as indented JSON.
func EncodeDocument(r *analysis.Result) ([]byte, error) {
	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return append(b, '\n'), nil
}

// EncodeBundle wraps doc as the single deflated entry of a zip archive.
// The entry carries modTime so equal inputs give equal archives.
func EncodeBundle(doc []byte, modTime time.Time) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	zw := zip.NewWriter(buf)

	h := &zip.FileHeader{
		Name:   analysis.BundleEntryName,
		Method: zip.Deflate,
	}
	if modTime.IsZero() {
		modTime = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	h.Modified = modTime.UTC()

	w, err := zw.CreateHeader(h)
	if err != nil {
		return nil, fmt.Errorf("create bundle entry: %w", err)
	}
	if _, err := w.Write(doc); err != nil {
		return nil, fmt.Errorf("write bundle entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close bundle: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeBundle returns the document stored in a bundle.
func DecodeBundle(bundle []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(bundle), int64(len(bundle)))
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}
	if len(zr.File) != 1 || zr.File[0].Name != analysis.BundleEntryName {
		return nil, fmt.Errorf("bundle must hold exactly one %s entry, found %d entries", analysis.BundleEntryName, len(zr.File))
	}
	rc, err := zr.File[0].Open()
	if err != nil {
		return nil, fmt.Errorf("open bundle entry: %w", err)
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func encodeBoth(r *analysis.Result) (doc, bundle []byte, err error) {
	doc, err = EncodeDocument(r)
	if err != nil {
		return nil, nil, &analysis.PersistenceError{ArtifactID: r.ArtifactID, Encoding: analysis.FormatDocument, Err: err}
	}
	bundle, err = EncodeBundle(doc, r.CreatedAt)
	if err != nil {
		return nil, nil, &analysis.PersistenceError{ArtifactID: r.ArtifactID, Encoding: analysis.FormatBundle, Err: err}
	}
	return doc, bundle, nil
}
