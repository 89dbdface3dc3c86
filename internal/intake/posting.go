package intake

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rawanfarouq/EduRA-sub001/internal/fileid"
	"github.com/rawanfarouq/EduRA-sub001/internal/models"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Posting is a course posting file. JSON postings decode through the same YAML decoder.
type Posting struct {
	ID           string `yaml:"id"`
	Title        string `yaml:"title" validate:"required"`
	Description  string `yaml:"description"`
	CategoryName string `yaml:"category_name"`
	// Notify defaults to true; false stores the course without a push run.
	Notify *bool `yaml:"notify"`
}

// ShouldNotify reports whether the posting asks for a push run.
func (p Posting) ShouldNotify() bool {
	return p.Notify == nil || *p.Notify
}

// Target converts the posting to a course, using fallbackID when the posting names none.
func (p Posting) Target(fallbackID string) models.TargetItem {
	id := strings.TrimSpace(p.ID)
	if id == "" {
		id = fallbackID
	}
	return models.TargetItem{
		ID:           id,
		Title:        strings.TrimSpace(p.Title),
		Description:  strings.TrimSpace(p.Description),
		CategoryName: strings.TrimSpace(p.CategoryName),
	}
}

// ParsePosting decodes and validates one posting. Unknown keys are rejected.
func ParsePosting(data []byte) (Posting, error) {
	var p Posting
	if err := decodeStrict(data, &p); err != nil {
		return Posting{}, fmt.Errorf("decode posting: %w", err)
	}
	if err := validate.Struct(p); err != nil {
		return Posting{}, fmt.Errorf("invalid posting: %w", err)
	}
	return p, nil
}

// LoadPosting reads a posting file. Its course id defaults to one derived from the path.
func LoadPosting(path string) (models.TargetItem, Posting, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.TargetItem{}, Posting{}, err
	}
	p, err := ParsePosting(data)
	if err != nil {
		return models.TargetItem{}, Posting{}, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return p.Target(fileid.CourseID(path)), p, nil
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty document")
		}
		return err
	}
	return nil
}
