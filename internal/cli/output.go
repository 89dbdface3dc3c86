// Package cli renders match and push results for the edura-match command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rawanfarouq/EduRA-sub001/internal/matching"
	"github.com/rawanfarouq/EduRA-sub001/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat maps a flag value to an OutputFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q; use text or json", s)
}

const rule = "─────────────────────────────────────────────────────────"

// WriteRankResult writes the courses ranked for a CV.
func WriteRankResult(w io.Writer, res *matching.PullResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, res)
	}

	fmt.Fprintf(w, "\n%d courses ranked", len(res.Items))
	if res.FallbackUsed {
		fmt.Fprint(w, " (below-threshold courses added to reach the minimum)")
	}
	if res.Partial {
		fmt.Fprint(w, " [partial: run budget expired]")
	}
	fmt.Fprintln(w)
	writeExpertise(w, res)
	fmt.Fprintln(w)

	for i, it := range res.Items {
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "#%d %s | Score: %.4f (similarity %.4f + boost %.2f)\n",
			i+1, utils.TruncateForLog(it.Title, 60), it.FinalScore, it.Similarity, it.Boost)
		fmt.Fprintf(w, "ID: %s\n", it.TargetID)
		if it.CategoryName != "" {
			fmt.Fprintf(w, "Category: %s\n", it.CategoryName)
		}
	}
	writeExcluded(w, res.Excluded)
	return nil
}

func writeExpertise(w io.Writer, res *matching.PullResult) {
	exp := res.Expertise
	if exp.IsEmpty() {
		fmt.Fprintln(w, "Expertise: (not extracted)")
		return
	}
	fmt.Fprintf(w, "Primary field: %s\n", exp.PrimaryField)
	if len(exp.RelatedFields) > 0 {
		fmt.Fprintf(w, "Related fields: %s\n", strings.Join(exp.RelatedFields, ", "))
	}
	if len(exp.Keywords) > 0 {
		fmt.Fprintf(w, "Keywords: %s\n", TruncateWords(strings.Join(exp.Keywords, ", "), 15))
	}
}

// WritePushResult writes the outcome of a push run.
func WritePushResult(w io.Writer, res *matching.PushResult, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, res)
	}
	mode := ""
	if res.DryRun {
		mode = " (dry run)"
	}
	fmt.Fprintf(w, "\nCourse %s%s: %d qualified, %d notified, %d already notified\n",
		res.TargetID, mode, res.Qualified, res.NotifiedCount, res.Duplicates)
	fmt.Fprintf(w, "Emails: %d sent, %d failed\n", res.EmailsSent, res.EmailFailures)
	if res.Partial {
		fmt.Fprintln(w, "Partial: run budget expired before every tutor was scored")
	}
	for _, m := range res.Matches {
		fmt.Fprintf(w, "  %-36s %.4f\n", m.CandidateID, m.FinalScore)
	}
	writeExcluded(w, res.Excluded)
	return nil
}

func writeExcluded(w io.Writer, excluded []*matching.ItemError) {
	if len(excluded) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%d excluded:\n", len(excluded))
	for _, e := range excluded {
		fmt.Fprintf(w, "  %s [%s] %s\n", e.ItemID, e.Stage, utils.TruncateForLog(e.Err.Error(), 120))
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
