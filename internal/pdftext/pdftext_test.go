package pdftext

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPDF(t *testing.T) {
	assert.True(t, IsPDF([]byte("%PDF-1.7\n...")))
	assert.False(t, IsPDF([]byte("PK\x03\x04")))
	assert.False(t, IsPDF(nil))
}

func TestExtractBytes_NotPDF(t *testing.T) {
	_, err := ExtractBytes([]byte("Jean Dupont\nOutil: Go"))
	assert.True(t, errors.Is(err, ErrNotPDF))

	_, err = ExtractBytes(nil)
	assert.True(t, errors.Is(err, ErrNotPDF))
}

func TestExtractBytes_Corrupt(t *testing.T) {
	_, err := ExtractBytes([]byte("%PDF-1.4\ngarbage without xref"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotPDF))
}

func TestExtractFile_Missing(t *testing.T) {
	_, err := ExtractFile(filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
