package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rawanfarouq/EduRA-sub001/internal/matching"
	"github.com/rawanfarouq/EduRA-sub001/internal/models"
)

func samplePull() *matching.PullResult {
	return &matching.PullResult{
		Items: []matching.RankedTarget{
			{MatchScore: models.NewMatchScore("", "c-1", 0.71, 0.08), Title: "Intro to Data Science", CategoryName: "Data"},
			{MatchScore: models.NewMatchScore("", "c-2", 0.20, 0), Title: "Pottery"},
		},
		Expertise:    models.Expertise{PrimaryField: "Data Science", Keywords: []string{"pandas", "sql"}},
		FallbackUsed: true,
		Excluded: []*matching.ItemError{
			{Stage: matching.StageEmbed, ItemID: "c-3", Err: errors.New("embedding failed: timeout")},
		},
	}
}

func TestWriteRankResult_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRankResult(&buf, samplePull(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{
		"2 courses ranked",
		"below-threshold",
		"Primary field: Data Science",
		"#1 Intro to Data Science | Score: 0.7900",
		"ID: c-2",
		"1 excluded",
		"c-3 [embed]",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestWriteRankResult_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteRankResult(&buf, samplePull(), OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded struct {
		Items []struct {
			TargetID   string  `json:"target_id"`
			FinalScore float64 `json:"final_score"`
			Title      string  `json:"title"`
		} `json:"items"`
		FallbackUsed bool `json:"fallback_used"`
		Excluded     []struct {
			ID    string `json:"id"`
			Stage string `json:"stage"`
		} `json:"excluded"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if len(decoded.Items) != 2 || decoded.Items[0].TargetID != "c-1" || !decoded.FallbackUsed {
		t.Errorf("decoded: %+v", decoded)
	}
	if len(decoded.Excluded) != 1 || decoded.Excluded[0].Stage != "embed" {
		t.Errorf("excluded: %+v", decoded.Excluded)
	}
}

func TestWritePushResult_Text(t *testing.T) {
	res := &matching.PushResult{
		TargetID:      "go-101",
		Qualified:     2,
		NotifiedCount: 1,
		Duplicates:    1,
		EmailsSent:    1,
		Matches:       []models.MatchScore{models.NewMatchScore("t1", "go-101", 0.8, 0.05)},
		DryRun:        true,
	}
	var buf bytes.Buffer
	if err := WritePushResult(&buf, res, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"go-101 (dry run)", "2 qualified, 1 notified, 1 already notified", "t1", "0.8500"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"JSON", OutputJSON, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestTruncateWords(t *testing.T) {
	if got := TruncateWords("a b c d", 2); got != "a b..." {
		t.Errorf("TruncateWords = %q", got)
	}
	if got := TruncateWords("a b", 5); got != "a b" {
		t.Errorf("TruncateWords short = %q", got)
	}
}
