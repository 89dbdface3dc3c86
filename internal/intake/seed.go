package intake

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/rawanfarouq/EduRA-sub001/internal/fileid"
	"github.com/rawanfarouq/EduRA-sub001/internal/models"
)

// SeedTutor is a tutor entry in a seed file. CVFile is resolved relative to the seed file.
type SeedTutor struct {
	ID     string `yaml:"id" validate:"required"`
	Name   string `yaml:"name"`
	Email  string `yaml:"email" validate:"omitempty,email"`
	CVText string `yaml:"cv_text" validate:"required_without=CVFile"`
	CVFile string `yaml:"cv_file"`
}

// Seed is a bulk load of tutors and courses.
type Seed struct {
	Tutors  []SeedTutor `yaml:"tutors" validate:"dive"`
	Courses []Posting   `yaml:"courses" validate:"dive"`
}

// LoadSeed reads and validates a seed file and resolves tutor CV files.
func LoadSeed(path string) ([]models.CandidateProfile, []models.TargetItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	var s Seed
	if err := decodeStrict(data, &s); err != nil {
		return nil, nil, fmt.Errorf("decode seed %s: %w", path, err)
	}
	if err := validate.Struct(s); err != nil {
		return nil, nil, fmt.Errorf("invalid seed %s: %w", path, err)
	}

	base := filepath.Dir(path)
	tutors := make([]models.CandidateProfile, 0, len(s.Tutors))
	for _, t := range s.Tutors {
		c := models.CandidateProfile{
			ID:          t.ID,
			RecipientID: t.ID,
			Name:        t.Name,
			Email:       t.Email,
			Text:        strings.TrimSpace(t.CVText),
		}
		if t.CVFile != "" {
			p := t.CVFile
			if !filepath.IsAbs(p) {
				p = filepath.Join(base, p)
			}
			content, err := os.ReadFile(p)
			if err != nil {
				return nil, nil, fmt.Errorf("tutor %s: %w", t.ID, err)
			}
			c.Document = &models.Document{
				Content:   content,
				Filename:  filepath.Base(p),
				MediaType: mime.TypeByExtension(filepath.Ext(p)),
			}
		}
		tutors = append(tutors, c)
	}

	courses := make([]models.TargetItem, 0, len(s.Courses))
	for i, p := range s.Courses {
		courses = append(courses, p.Target(fileid.CourseID(fmt.Sprintf("%s#%d", path, i))))
	}
	return tutors, courses, nil
}
