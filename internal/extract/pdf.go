package extract

import (
	"bytes"
	"errors"
	"strings"

	"github.com/ledongthuc/pdf"
)

func pdfText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty file")
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	numPages := reader.NumPage()
	parts := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		parts = append(parts, pageText(reader.Page(i)))
	}
	return strings.Join(parts, "\n"), nil
}

// pageText returns "" for pages that carry no extractable text.
func pageText(page pdf.Page) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	if page.V.IsNull() {
		return ""
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}
