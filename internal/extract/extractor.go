// Package extract turns an uploaded document into plain text. Extraction never fails from the
// caller's point of view: an unsupported or unreadable document yields "".
package extract

import (
	"mime"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/rawanfarouq/EduRA-sub001/internal/models"
	"github.com/rawanfarouq/EduRA-sub001/pkg/utils"
)

// Format is a document format the extractor can read.
type Format string

const (
	FormatUnknown Format = ""
	FormatPDF     Format = "pdf"
	FormatDOCX    Format = "docx"
	FormatXLSX    Format = "xlsx"
	FormatHTML    Format = "html"
	FormatPlain   Format = "plain"
)

var mediaTypes = map[string]Format{
	"application/pdf": FormatPDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": FormatDOCX,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":       FormatXLSX,
	"text/html":             FormatHTML,
	"application/xhtml+xml": FormatHTML,
	"text/plain":            FormatPlain,
	"text/markdown":         FormatPlain,
	"text/x-markdown":       FormatPlain,
}

var extensions = map[string]Format{
	".pdf":      FormatPDF,
	".docx":     FormatDOCX,
	".xlsx":     FormatXLSX,
	".html":     FormatHTML,
	".htm":      FormatHTML,
	".txt":      FormatPlain,
	".md":       FormatPlain,
	".markdown": FormatPlain,
	".rst":      FormatPlain,
}

// DetectFormat resolves the format from the declared media type, falling back to the
// filename extension when the media type is missing or not one we read.
func DetectFormat(mediaType, filename string) Format {
	if mt, _, err := mime.ParseMediaType(mediaType); err == nil {
		if f, ok := mediaTypes[strings.ToLower(mt)]; ok {
			return f
		}
	}
	return extensions[strings.ToLower(filepath.Ext(filename))]
}

// Extractor extracts plain text from documents.
type Extractor struct {
	logger *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger for unreadable documents.
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// NewExtractor returns a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = utils.OrNop(e.logger)
	return e
}

// Extract returns the trimmed text of doc, or "" when it cannot be read.
func (e *Extractor) Extract(doc models.Document) string {
	if doc.Empty() {
		return ""
	}
	format := DetectFormat(doc.MediaType, doc.Filename)
	text, err := extractFormat(format, doc.Content)
	if err != nil {
		e.logger.Debug("document unreadable",
			zap.String("filename", doc.Filename),
			zap.String("media_type", doc.MediaType),
			zap.Error(err))
		return ""
	}
	return strings.TrimSpace(text)
}

// ExtractFile reads path and extracts it using the extension alone.
func (e *Extractor) ExtractFile(path string) string {
	content, err := os.ReadFile(path)
	if err != nil {
		e.logger.Debug("document unreadable", zap.String("path", path), zap.Error(err))
		return ""
	}
	return e.Extract(models.Document{Content: content, Filename: filepath.Base(path)})
}

func extractFormat(format Format, content []byte) (string, error) {
	switch format {
	case FormatPDF:
		return extractPDF(content)
	case FormatDOCX:
		return extractDOCX(content)
	case FormatXLSX:
		return extractExcel(content)
	case FormatHTML:
		return extractHTML(content)
	case FormatPlain:
		return extractPlain(content)
	default:
		return "", errUnsupported
	}
}
