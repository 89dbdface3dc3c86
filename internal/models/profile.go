package models

import "strings"

// Document is a stored file handed to the text extractor.
type Document struct {
	Content   []byte `json:"-"`
	MediaType string `json:"media_type,omitempty"`
	Filename  string `json:"filename,omitempty"`
}

// Empty reports whether there is nothing to extract from.
func (d *Document) Empty() bool {
	return d == nil || len(d.Content) == 0
}

// CandidateProfile is a tutor as seen by the engine. Text and Document are transient inputs;
// Expertise and Embedding are the derived values that may be cached by the profile store.
type CandidateProfile struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipient_id"`
	Name        string    `json:"name,omitempty"`
	Email       string    `json:"email,omitempty"`
	Text        string    `json:"-"`
	Document    *Document `json:"-"`
	Expertise   Expertise `json:"expertise"`
	Embedding   []float32 `json:"-"`
}

// HasDerived reports whether both derived values are cached and can be reused.
func (c *CandidateProfile) HasDerived() bool {
	return len(c.Embedding) > 0 && !c.Expertise.IsEmpty()
}

// Deliverable reports whether the recipient has an address an email could be sent to.
func (c *CandidateProfile) Deliverable() bool {
	addr := strings.TrimSpace(c.Email)
	at := strings.LastIndex(addr, "@")
	return at > 0 && at < len(addr)-1 && !strings.ContainsAny(addr, " \t\r\n")
}

// TargetItem is a course posting as seen by the engine.
type TargetItem struct {
	ID           string    `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title" validate:"required"`
	Description  string    `json:"description" yaml:"description"`
	CategoryName string    `json:"category_name" yaml:"category_name"`
	Embedding    []float32 `json:"-" yaml:"-"`
}

// ComposedText joins title, description and category name into the text that gets embedded.
func (t *TargetItem) ComposedText() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{t.Title, t.Description, t.CategoryName} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}
