package docx

import (
	"archive/zip"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ragserve/internal/core/domain"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

// createTestDOCX writes a minimal DOCX file and returns its path.
func createTestDOCX(t *testing.T, documentXML string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "doc.docx")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	contentTypes, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	_, err = contentTypes.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`))
	require.NoError(t, err)

	if documentXML != "" {
		doc, err := w.Create(documentPart)
		require.NoError(t, err)
		_, err = doc.Write([]byte(documentXML))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

func TestNew(t *testing.T) {
	e := New()
	require.NotNil(t, e)
	assert.Equal(t, []string{".docx"}, e.Extensions())
}

func TestExtract(t *testing.T) {
	xml := `<?xml version="1.0"?><w:document ` + wordNS + `><w:body>
<w:p><w:r><w:t>Hello </w:t></w:r><w:r><w:t>World</w:t></w:r></w:p>
<w:p><w:r><w:t>Second paragraph</w:t></w:r></w:p>
</w:body></w:document>`

	pages, err := New().Extract(context.Background(), createTestDOCX(t, xml))
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello World\nSecond paragraph"}, pages)
}

func TestExtract_PageBreaks(t *testing.T) {
	xml := `<w:document ` + wordNS + `><w:body>
<w:p><w:r><w:t>Page one</w:t></w:r></w:p>
<w:p><w:r><w:br w:type="page"/><w:t>Page two</w:t></w:r></w:p>
</w:body></w:document>`

	pages, err := New().Extract(context.Background(), createTestDOCX(t, xml))
	require.NoError(t, err)
	assert.Equal(t, []string{"Page one", "Page two"}, pages)
}

func TestExtract_Errors(t *testing.T) {
	t.Run("missing document part", func(t *testing.T) {
		_, err := New().Extract(context.Background(), createTestDOCX(t, ""))
		assert.ErrorIs(t, err, domain.ErrExtraction)
	})

	t.Run("malformed xml", func(t *testing.T) {
		_, err := New().Extract(context.Background(), createTestDOCX(t, "<w:document><w:body>"))
		assert.ErrorIs(t, err, domain.ErrExtraction)
	})

	t.Run("not a zip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "fake.docx")
		require.NoError(t, os.WriteFile(path, []byte("plain text"), 0o600))
		_, err := New().Extract(context.Background(), path)
		assert.ErrorIs(t, err, domain.ErrExtraction)
	})
}
