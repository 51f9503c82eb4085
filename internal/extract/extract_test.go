package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
    <w:p><w:r><w:t xml:space="preserve">Senior </w:t></w:r><w:r><w:t>Go Engineer</w:t></w:r></w:p>
    <w:p><w:r><w:t>Skills:</w:t><w:tab/><w:t>Kafka &amp; Postgres</w:t></w:r></w:p>
  </w:body>
</w:document>`

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	files := map[string]string{
		"[Content_Types].xml":          `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/document.xml":            body,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractDocx(t *testing.T) {
	text, err := Extract(buildDocx(t, documentXML), "resume.docx")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nSenior Go Engineer\nSkills:\tKafka & Postgres", text)
}

// buildPDF writes a minimal PDF with one page per entry. An empty entry
// becomes a page without a content stream.
func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()

	fontRef := 3 + len(pages)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"", // page tree, filled below
	}
	kids := make([]string, 0, len(pages))
	var streams []string
	for i, text := range pages {
		kids = append(kids, fmt.Sprintf("%d 0 R", 3+i))
		page := fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >>", fontRef)
		if text != "" {
			content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
			page += fmt.Sprintf(" /Contents %d 0 R", fontRef+1+len(streams))
			streams = append(streams, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
		}
		objects = append(objects, page+" >>")
	}
	objects[1] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages))
	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	objects = append(objects, streams...)

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestExtractPDF(t *testing.T) {
	tests := []struct {
		name  string
		pages []string
		want  string
	}{
		{name: "single page", pages: []string{"Jane Doe"}, want: "Jane Doe"},
		{name: "pages joined by newline", pages: []string{"Jane Doe", "Go Engineer"}, want: "Jane Doe\n\nGo Engineer"},
		{name: "page without text", pages: []string{"Jane Doe", "", "Go Engineer"}, want: "Jane Doe\n\n\nGo Engineer"},
		{name: "no text at all", pages: []string{""}, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := Extract(buildPDF(t, tt.pages...), "resume.pdf")
			require.NoError(t, err)
			assert.Equal(t, tt.want, text)
		})
	}
}

func TestExtractDocxIgnoresTabStops(t *testing.T) {
	body := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Header</w:t></w:r></w:p>
    <w:p><w:pPr><w:tabs><w:tab w:val="left" w:pos="720"/><w:tab w:val="right" w:pos="9360"/></w:tabs></w:pPr><w:r><w:t>Jane Doe</w:t><w:tab/><w:t>Berlin</w:t></w:r></w:p>
  </w:body>
</w:document>`

	text, err := Extract(buildDocx(t, body), "cv.docx")
	require.NoError(t, err)
	assert.Equal(t, "Header\nJane Doe\tBerlin", text)
}

func TestExtractUnsupportedExtension(t *testing.T) {
	for _, ext := range []string{"txt", ".txt", "resume.txt", "", "doc"} {
		text, err := Extract([]byte("plain text resume"), ext)
		assert.NoError(t, err, ext)
		assert.Empty(t, text, ext)
	}
}

func TestExtractCorruptDocuments(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		ext    string
		format string
	}{
		{name: "garbage pdf", data: []byte("definitely not a pdf"), ext: "pdf", format: FormatPDF},
		{name: "empty pdf", data: nil, ext: ".PDF", format: FormatPDF},
		{name: "garbage docx", data: []byte("PK not really a zip"), ext: "docx", format: FormatDOCX},
		{name: "empty docx", data: []byte{}, ext: "cv.docx", format: FormatDOCX},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := Extract(tt.data, tt.ext)
			require.Error(t, err)
			assert.Empty(t, text)

			var parseErr *DocumentParseError
			require.True(t, errors.As(err, &parseErr))
			assert.Equal(t, tt.format, parseErr.Format)
		})
	}
}

func TestExtractDocxBrokenXML(t *testing.T) {
	_, err := Extract(buildDocx(t, "<w:document><w:body><w:p>"), "docx")

	var parseErr *DocumentParseError
	require.True(t, errors.As(err, &parseErr))
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("pdf"))
	assert.True(t, Supported(".DOCX"))
	assert.True(t, Supported("cv.pdf"))
	assert.False(t, Supported("txt"))
	assert.False(t, Supported("odt"))
}

func TestTruncate(t *testing.T) {
	got, cut := Truncate("short", 10)
	assert.False(t, cut)
	assert.Equal(t, "short", got)

	got, cut = Truncate("abcdefghij", 10)
	assert.False(t, cut)
	assert.Equal(t, "abcdefghij", got)

	got, cut = Truncate("abcdefghijkl", 10)
	assert.True(t, cut)
	assert.Equal(t, "abcdefghij"+TruncationMarker, got)

	got, cut = Truncate(strings.Repeat("é", 5), 3)
	assert.True(t, cut)
	assert.Equal(t, "ééé"+TruncationMarker, got)

	got, cut = Truncate("anything", 0)
	assert.False(t, cut)
	assert.Equal(t, "anything", got)
}
