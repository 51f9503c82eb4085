package extract

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nguyenthenguyen/docx"
)

func docxText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty file")
	}

	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()

	paragraphs, err := paragraphs(doc.Editable().GetContent())
	if err != nil {
		return "", fmt.Errorf("parse document.xml: %w", err)
	}
	return strings.Join(paragraphs, "\n"), nil
}

// paragraphs walks WordprocessingML and collects the text of each w:p.
func paragraphs(content string) ([]string, error) {
	dec := xml.NewDecoder(strings.NewReader(content))

	var (
		out    []string
		cur    strings.Builder
		inText bool
		// w:tabs holds tab stop definitions, not tab characters
		inTabs int
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tabs":
				inTabs++
			case "tab":
				if inTabs == 0 {
					cur.WriteByte('\t')
				}
			case "br", "cr":
				cur.WriteByte('\n')
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "tabs":
				if inTabs > 0 {
					inTabs--
				}
			case "p":
				out = append(out, cur.String())
				cur.Reset()
			}
		case xml.CharData:
			if inText {
				cur.Write(t)
			}
		}
	}
	return out, nil
}
