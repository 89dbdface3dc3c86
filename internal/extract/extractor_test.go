package extract

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/rawanfarouq/EduRA-sub001/internal/models"
)

const wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func docxBody(paragraphs ...string) string {
	var b bytes.Buffer
	b.WriteString(`<w:document ` + wordNS + `><w:body>`)
	for _, p := range paragraphs {
		b.WriteString(`<w:p w:rsidR="00AB"><w:r><w:t xml:space="preserve">` + p + `</w:t></w:r></w:p>`)
	}
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

// zipOf builds a zip archive from name/content pairs.
func zipOf(t *testing.T, files ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for i := 0; i+1 < len(files); i += 2 {
		fw, err := w.Create(files[i])
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write([]byte(files[i+1])); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		mediaType string
		filename  string
		want      Format
	}{
		{"application/pdf", "cv.bin", FormatPDF},
		{"text/plain; charset=utf-8", "cv.pdf", FormatPlain},
		{"TEXT/HTML", "", FormatHTML},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "", FormatDOCX},
		{"application/octet-stream", "cv.DOCX", FormatDOCX},
		{"", "sheet.xlsx", FormatXLSX},
		{"", "notes.md", FormatPlain},
		{"", "page.htm", FormatHTML},
		{"not a media type", "cv.txt", FormatPlain},
		{"application/msword", "cv.doc", FormatUnknown},
		{"", "", FormatUnknown},
	}
	for _, tt := range tests {
		if got := DetectFormat(tt.mediaType, tt.filename); got != tt.want {
			t.Errorf("DetectFormat(%q, %q) = %q, want %q", tt.mediaType, tt.filename, got, tt.want)
		}
	}
}

func TestExtract_plain(t *testing.T) {
	e := NewExtractor()
	tests := []struct {
		name    string
		content []byte
		want    string
	}{
		{"ascii", []byte("Hello world\nLine 2\n"), "Hello world\nLine 2"},
		{"utf8", []byte("caf\xc3\xa9"), "café"},
		{"invalid utf8", []byte("hello\x80world"), "hello�world"},
		{"bom", []byte("\xEF\xBB\xBFhi"), "hi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Extract(models.Document{Content: tt.content, MediaType: "text/plain"})
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtract_excel(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	f.SetCellValue("Sheet1", "A1", "Course")
	f.SetCellValue("Sheet1", "A2", "Algebra")
	f.SetCellValue("Sheet1", "B2", "Geometry")
	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		t.Fatalf("WriteTo: %v", err)
	}

	got := NewExtractor().Extract(models.Document{Content: buf.Bytes(), Filename: "skills.xlsx"})
	if got != "Course\nAlgebra\tGeometry" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_docx(t *testing.T) {
	content := zipOf(t, "word/document.xml", docxBody("Physics tutor", "Ten years of optics"))
	got := NewExtractor().Extract(models.Document{Content: content, Filename: "cv.docx"})
	if got != "Physics tutor\nTen years of optics" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_docxMainPartFromContentTypes(t *testing.T) {
	for _, override := range []string{
		`<Override PartName="/word/document2.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>`,
		`<Override ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml" PartName="/word/document2.xml"/>`,
	} {
		types := `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` + override + `</Types>`
		content := zipOf(t,
			"[Content_Types].xml", types,
			"word/document.xml", docxBody("wrong part"),
			"word/document2.xml", docxBody("Content from document2"),
		)
		got := NewExtractor().Extract(models.Document{Content: content, Filename: "cv.docx"})
		if got != "Content from document2" {
			t.Errorf("got %q", got)
		}
	}
}

func TestExtract_docxTabsAndForeignElements(t *testing.T) {
	body := `<w:document ` + wordNS + ` xmlns:x="urn:other"><w:body><w:p><w:r><w:t>Name</w:t><w:tab/><w:t>Ada</w:t></w:r><x:t>ignored</x:t></w:p></w:body></w:document>`
	got := NewExtractor().Extract(models.Document{Content: zipOf(t, "word/document.xml", body), Filename: "a.docx"})
	if got != "Name\tAda" {
		t.Errorf("got %q", got)
	}
}

func TestExtract_html(t *testing.T) {
	page := `<html><head><title>Jane Doe CV</title><style>p{color:red}</style></head>
<body><script>var x = 1;</script><h1>Jane   Doe</h1><p>Mathematics
 tutor</p><ul><li>Calculus</li></ul></body></html>`
	got := NewExtractor().Extract(models.Document{Content: []byte(page), MediaType: "text/html"})
	want := "Jane Doe CV\nJane Doe Mathematics tutor Calculus"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestExtract_unreadableYieldsEmpty(t *testing.T) {
	e := NewExtractor()
	tests := []struct {
		name string
		doc  models.Document
	}{
		{"empty content", models.Document{MediaType: "text/plain"}},
		{"unknown format", models.Document{Content: []byte("data"), Filename: "cv.doc"}},
		{"docx not zip", models.Document{Content: []byte("not a zip"), Filename: "cv.docx"}},
		{"docx without body", models.Document{Content: zipOf(t, "other.xml", "<a/>"), Filename: "cv.docx"}},
		{"garbage pdf", models.Document{Content: []byte("%PDF-1.4 garbage"), MediaType: "application/pdf"}},
		{"garbage xlsx", models.Document{Content: []byte("nope"), Filename: "a.xlsx"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Extract(tt.doc); got != "" {
				t.Errorf("got %q, want empty", got)
			}
		})
	}
}

func TestExtractFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cv.txt")
	if err := os.WriteFile(path, []byte("File content"), 0600); err != nil {
		t.Fatal(err)
	}

	e := NewExtractor()
	if got := e.ExtractFile(path); got != "File content" {
		t.Errorf("got %q", got)
	}
	if got := e.ExtractFile(filepath.Join(dir, "missing.txt")); got != "" {
		t.Errorf("missing file: got %q", got)
	}
}
