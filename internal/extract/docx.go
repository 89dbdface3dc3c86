package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	docxDefaultPart     = "word/document.xml"
	docxContentTypes    = "[Content_Types].xml"
	docxMainContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"
	wordprocessingNS    = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	maxDocxPartSize     = 32 << 20
)

type contentTypes struct {
	Overrides []struct {
		PartName    string `xml:"PartName,attr"`
		ContentType string `xml:"ContentType,attr"`
	} `xml:"Override"`
}

// extractDOCX reads the main document part of an OOXML word file and returns the text of
// its <w:t> runs, one line per paragraph.
func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("docx: not a zip: %w", err)
	}

	part := docxDefaultPart
	if ct, err := readZipPart(zr, docxContentTypes); err == nil {
		var types contentTypes
		if xml.Unmarshal(ct, &types) == nil {
			for _, o := range types.Overrides {
				if o.ContentType == docxMainContentType {
					part = strings.TrimPrefix(o.PartName, "/")
					break
				}
			}
		}
	}

	body, err := readZipPart(zr, part)
	if err != nil {
		return "", fmt.Errorf("docx: %w", err)
	}
	return wordText(body)
}

func readZipPart(zr *zip.Reader, name string) ([]byte, error) {
	f, err := zr.Open(name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxDocxPartSize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// wordText walks the WordprocessingML tokens, collecting <w:t> character data. Paragraph
// ends become newlines and <w:tab/> becomes a tab.
func wordText(doc []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(doc))
	var (
		b      strings.Builder
		inText bool
	)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("docx: parse xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordprocessingNS {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				b.WriteByte('\t')
			case "br":
				b.WriteByte('\n')
			}
		case xml.EndElement:
			if t.Name.Space != wordprocessingNS {
				continue
			}
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				b.WriteByte('\n')
			}
		case xml.CharData:
			if inText {
				b.Write(t)
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}
