package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/samvad-hq/tweet-likes-predictor/internal/domain"
	"github.com/samvad-hq/tweet-likes-predictor/internal/scoring"
)

// RenderText writes a panel for a terminal.
func RenderText(w io.Writer, p Panel) error {
	var b strings.Builder
	switch p.Kind {
	case KindSuccess:
		fmt.Fprintf(&b, "[ok] %s\n", p.Title)
		fmt.Fprintf(&b, "  Predicted likes: %d\n", p.Likes)
		fmt.Fprintf(&b, "  Interpretation:  %s\n", p.Label)
		if p.RawJSON != "" {
			b.WriteString("  Raw endpoint response:\n")
			b.WriteString(indent(p.RawJSON, "    "))
		}
	case KindWarning:
		fmt.Fprintf(&b, "[warn] %s\n", p.Title)
	default:
		fmt.Fprintf(&b, "[error] %s\n", p.Title)
		if p.Detail != "" {
			b.WriteString(indent(p.Detail, "  "))
		}
		if p.Body != "" {
			b.WriteString("  Response body:\n")
			b.WriteString(indent(p.Body, "    "))
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderConfigStatus writes which endpoint settings are present.
func RenderConfigStatus(w io.Writer, s scoring.Status) error {
	deployment := s.DeploymentName
	if deployment == "" {
		deployment = "(empty)"
	}
	_, err := fmt.Fprintf(w, "SCORING_URL set: %t\nAPI_KEY set:     %t\nDEPLOYMENT_NAME: %s\n",
		s.ScoringURLSet, s.APIKeySet, deployment)
	return err
}

// RenderHistory writes recent predictions, one per line.
func RenderHistory(w io.Writer, recs []domain.PredictionRecord) error {
	if len(recs) == 0 {
		_, err := io.WriteString(w, "no predictions recorded\n")
		return err
	}
	for _, rec := range recs {
		if _, err := fmt.Fprintf(w, "%s  %6d  %-17s  %s\n",
			rec.CreatedAt.Local().Format("2006-01-02 15:04:05"), rec.Likes, rec.Label, oneLine(rec.Text, 60)); err != nil {
			return err
		}
	}
	return nil
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n") + "\n"
}

func oneLine(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > limit {
		return string(r[:limit-3]) + "..."
	}
	return s
}
