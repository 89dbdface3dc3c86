package ranking

// BoostConfig holds the additive score adjustments applied on top of cosine similarity.
// A nil field takes its default; an explicit zero disables the rule.
type BoostConfig struct {
	CategoryField *float64 `yaml:"category_field" json:"category_field"` // category name mentions a field of expertise
	TitleKeyword  *float64 `yaml:"title_keyword" json:"title_keyword"`   // target title mentions a keyword
	TextKeyword   *float64 `yaml:"text_keyword" json:"text_keyword"`     // combined target text mentions a keyword
}

// Weight returns a pointer to v, for building a BoostConfig in code.
func Weight(v float64) *float64 {
	return &v
}

// DefaultBoosts returns the boost values used when none are configured.
func DefaultBoosts() BoostConfig {
	return BoostConfig{
		CategoryField: Weight(0.08),
		TitleKeyword:  Weight(0.05),
		TextKeyword:   Weight(0.03),
	}
}

// ApplyDefaults fills unset fields with DefaultBoosts. Configured zeros are kept.
func (c *BoostConfig) ApplyDefaults() {
	d := DefaultBoosts()
	if c.CategoryField == nil {
		c.CategoryField = d.CategoryField
	}
	if c.TitleKeyword == nil {
		c.TitleKeyword = d.TitleKeyword
	}
	if c.TextKeyword == nil {
		c.TextKeyword = d.TextKeyword
	}
}

// Resolved returns the category, title and combined-text weights with defaults for unset fields.
func (c BoostConfig) Resolved() (category, title, text float64) {
	c.ApplyDefaults()
	return *c.CategoryField, *c.TitleKeyword, *c.TextKeyword
}

// Policy decides which scored items make it into a ranked result.
type Policy struct {
	// Threshold is the minimum final score for unconditional inclusion.
	Threshold float64 `yaml:"threshold" validate:"gte=-1"`
	// MinResults is filled from below-threshold items when too few qualify. Zero disables the fallback.
	MinResults int `yaml:"min_results" validate:"gte=0"`
	// MaxResults caps the result length. Zero means no cap.
	MaxResults int `yaml:"max_results" validate:"gte=0"`
}

// PushPolicy is the default policy for notifying tutors about a new course:
// every candidate at or above the threshold, no minimum, no cap.
func PushPolicy() Policy {
	return Policy{Threshold: 0.35}
}

// PullPolicy is the default policy for ranking courses for a submitted CV.
func PullPolicy() Policy {
	return Policy{Threshold: 0.25, MinResults: 5, MaxResults: 12}
}
