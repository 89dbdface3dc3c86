package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rawanfarouq/EduRA-sub001/internal/models"
)

func TestBoost_Rules(t *testing.T) {
	cfg := DefaultBoosts()
	exp := models.Expertise{
		PrimaryField:  "Physics",
		RelatedFields: []string{"Astronomy"},
		Keywords:      []string{"quantum", "optics"},
	}

	tests := []struct {
		name string
		in   BoostInput
		want float64
	}{
		{
			name: "nothing matches",
			in:   BoostInput{CategoryName: "Languages", TargetTitle: "Spanish A1", CombinedText: "Spanish A1 basics Languages", Expertise: exp},
			want: 0,
		},
		{
			name: "category contains related field",
			in:   BoostInput{CategoryName: "astronomy & space", TargetTitle: "Stars", CombinedText: "Stars astronomy & space", Expertise: exp},
			// "astronomy" is a keyword too, and the combined text contains it.
			want: 0.08 + 0.03,
		},
		{
			name: "title keyword also counts for combined text",
			in:   BoostInput{CategoryName: "Science", TargetTitle: "Applied QUANTUM computing", CombinedText: "Applied QUANTUM computing Science", Expertise: exp},
			want: 0.05 + 0.03,
		},
		{
			name: "description only",
			in:   BoostInput{CategoryName: "Science", TargetTitle: "Lasers", CombinedText: "Lasers intro to optics Science", Expertise: exp},
			want: 0.03,
		},
		{
			name: "all rules",
			in:   BoostInput{CategoryName: "Physics", TargetTitle: "Physics of optics", CombinedText: "Physics of optics Physics", Expertise: exp},
			want: 0.08 + 0.05 + 0.03,
		},
		{
			name: "empty expertise never boosts",
			in:   BoostInput{CategoryName: "Physics", TargetTitle: "Physics", CombinedText: "Physics", Expertise: models.EmptyExpertise()},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Boost(cfg, tt.in), 1e-12)
		})
	}
}

func TestBoost_CategoryUsesFieldsNotKeywords(t *testing.T) {
	exp := models.Expertise{PrimaryField: "Chemistry", Keywords: []string{"music"}}
	b := Explain(DefaultBoosts(), BoostInput{CategoryName: "Music", TargetTitle: "x", CombinedText: "x", Expertise: exp})
	assert.False(t, b.CategoryField)
	assert.Zero(t, b.Total)
}

func TestFinalScoreIsSimilarityPlusBoost(t *testing.T) {
	exp := models.Expertise{PrimaryField: "Math", Keywords: []string{"algebra"}}
	in := BoostInput{CategoryName: "Math", TargetTitle: "Linear algebra", CombinedText: "Linear algebra Math", Expertise: exp}
	boost := Boost(DefaultBoosts(), in)
	m := models.NewMatchScore("c", "t", 0.95, boost)
	assert.InDelta(t, 0.95+0.16, m.FinalScore, 1e-12)
	assert.Greater(t, m.FinalScore, 1.0)
}

func TestContainsAnyFold(t *testing.T) {
	assert.True(t, ContainsAnyFold("Introduction à l'ÉCOLE", []string{"école"}))
	assert.False(t, ContainsAnyFold("abc", []string{"", "  "}))
	assert.False(t, ContainsAnyFold("", []string{"a"}))
}

func TestBoostConfig_ApplyDefaults(t *testing.T) {
	c := BoostConfig{TitleKeyword: Weight(0.1), TextKeyword: Weight(0)}
	c.ApplyDefaults()
	category, title, text := c.Resolved()
	assert.Equal(t, 0.08, category)
	assert.Equal(t, 0.1, title)
	assert.Equal(t, 0.0, text, "a configured zero is kept")
}

func TestExplain_ZeroWeightDisablesRule(t *testing.T) {
	exp := models.Expertise{PrimaryField: "Music", RelatedFields: []string{}, Keywords: []string{"piano"}}
	in := BoostInput{CategoryName: "Music", TargetTitle: "Piano basics", CombinedText: "Piano basics Music", Expertise: exp}

	b := Explain(BoostConfig{CategoryField: Weight(0)}, in)
	assert.True(t, b.CategoryField, "the rule still matches")
	assert.InDelta(t, 0.05+0.03, b.Total, 1e-9)

	assert.InDelta(t, 0.08+0.05+0.03, Boost(BoostConfig{}, in), 1e-9, "an empty config uses the defaults")
}
