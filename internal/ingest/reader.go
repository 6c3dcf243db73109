// Package ingest turns local documents into plain text for text detection.
package ingest

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedType is returned for file extensions with no extractor
var ErrUnsupportedType = errors.New("unsupported file type")

// Document is the extracted text of one input
type Document struct {
	Name string
	Text string
}

// ReadFile extracts text from a .txt, .md, .docx or .pdf file
func ReadFile(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return Parse(filepath.Base(path), raw)
}

// ReadAll extracts plain text from r, typically stdin
func ReadAll(name string, r io.Reader) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if !utf8.Valid(raw) {
		return nil, fmt.Errorf("read %s: input is not valid UTF-8", name)
	}
	return &Document{Name: name, Text: string(raw)}, nil
}

// Parse picks an extractor from the extension of name. Plain text is
// returned untouched; extracted document text has its whitespace normalized.
func Parse(name string, raw []byte) (*Document, error) {
	var (
		text string
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".txt", ".md", ".markdown", "":
		if !utf8.Valid(raw) {
			return nil, fmt.Errorf("%s: input is not valid UTF-8", name)
		}
		return &Document{Name: name, Text: string(raw)}, nil
	case ".docx":
		text, err = parseDOCX(raw)
	case ".pdf":
		text, err = parsePDF(raw)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
	if err != nil {
		return nil, err
	}

	return &Document{Name: name, Text: normalizeWhitespace(text)}, nil
}

func parseDOCX(raw []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open docx zip: %w", err)
	}

	var xmlData []byte
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, openErr := f.Open()
		if openErr != nil {
			return "", fmt.Errorf("open document.xml: %w", openErr)
		}
		xmlData, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("read document.xml: %w", err)
		}
		break
	}
	if len(xmlData) == 0 {
		return "", errors.New("word/document.xml not found")
	}

	decoder := xml.NewDecoder(bytes.NewReader(xmlData))
	var b strings.Builder
	inText := false
	for {
		tok, tokenErr := decoder.Token()
		if tokenErr == io.EOF {
			break
		}
		if tokenErr != nil {
			return "", fmt.Errorf("decode document.xml: %w", tokenErr)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "p":
				if b.Len() > 0 {
					b.WriteString("\n")
				}
			case "tab":
				b.WriteString(" ")
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return b.String(), nil
}

func parsePDF(raw []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		content, pageErr := p.GetPlainText(nil)
		if pageErr != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", errors.New("no extractable text found in pdf")
	}
	return b.String(), nil
}

func normalizeWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}
