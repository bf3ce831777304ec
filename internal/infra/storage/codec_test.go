package storage

import (
	"bytes"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bryanwahyu/analysis-backend/internal/domain/analysis"
)

func TestEncodeDocumentKeepsStepOrder(t *testing.T) {
	r := newResult(analysis.NewArtifactID())
	doc, err := EncodeDocument(r)
	require.NoError(t, err)

	first := bytes.Index(doc, []byte(`"first"`))
	second := bytes.Index(doc, []byte(`"second"`))
	third := bytes.Index(doc, []byte(`"third"`))
	assert.True(t, first < second && second < third)
	assert.True(t, bytes.HasSuffix(doc, []byte("}\n")))
	assert.Contains(t, string(doc), `"attack_scenarios"`)
	assert.Contains(t, string(doc), `"document_download_path"`)
}

func TestEncodeDocumentEmptySlices(t *testing.T) {
	doc, err := EncodeDocument(&analysis.Result{
		Status:          analysis.StatusUnsupported,
		Findings:        []analysis.Finding{},
		AttackScenarios: []analysis.AttackScenario{},
	})
	require.NoError(t, err)
	assert.Contains(t, string(doc), `"findings": []`)
	assert.Contains(t, string(doc), `"attack_scenarios": []`)
}

func TestEncodeBundleSingleEntry(t *testing.T) {
	doc := []byte(`{"status":"ok"}` + "\n")
	mod := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	bundle, err := EncodeBundle(doc, mod)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(bundle), int64(len(bundle)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "result.json", zr.File[0].Name)
	assert.Equal(t, zip.Deflate, zr.File[0].Method)

	again, err := EncodeBundle(doc, mod)
	require.NoError(t, err)
	assert.Equal(t, bundle, again, "same input, same archive")

	got, err := DecodeBundle(bundle)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestDecodeBundleRejectsForeignArchives(t *testing.T) {
	_, err := DecodeBundle([]byte("not a zip"))
	assert.Error(t, err)

	buf := bytes.NewBuffer(nil)
	zw := zip.NewWriter(buf)
	for _, name := range []string{"a.json", "b.json"} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte("{}"))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())

	_, err = DecodeBundle(buf.Bytes())
	assert.Error(t, err)
}
