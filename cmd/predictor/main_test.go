package main

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/samvad-hq/tweet-likes-predictor/internal/app"
	"github.com/samvad-hq/tweet-likes-predictor/internal/scoring"
)

type countingScorer struct {
	texts []string
}

func (c *countingScorer) Predict(_ context.Context, text string) (scoring.Prediction, error) {
	c.texts = append(c.texts, text)
	return scoring.Prediction{Likes: 150, Raw: map[string]any{"predictions": []any{150}}}, nil
}

func TestInteractiveScoresOneLinePerAction(t *testing.T) {
	scorer := &countingScorer{}
	predictor := app.New(app.Deps{Scorer: scorer})
	var out strings.Builder

	err := interactive(context.Background(), predictor, strings.NewReader("first tweet\n\nsecond tweet\n"), &out)
	if err != nil {
		t.Fatalf("interactive: %v", err)
	}
	if len(scorer.texts) != 2 || scorer.texts[0] != "first tweet" || scorer.texts[1] != "second tweet" {
		t.Fatalf("unexpected scored texts %q", scorer.texts)
	}
	got := out.String()
	if strings.Count(got, "Tweet text> ") != 4 {
		t.Fatalf("expected a prompt per line plus the final one:\n%s", got)
	}
	if strings.Count(got, "High engagement") != 2 || !strings.Contains(got, "[warn] Please enter tweet text.") {
		t.Fatalf("unexpected transcript:\n%s", got)
	}
}

func TestInteractiveReturnsOnCancelWhileWaitingForInput(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- interactive(ctx, app.New(app.Deps{Scorer: &countingScorer{}}), pr, io.Discard)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("interactive returned error on cancel: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("interactive still blocked after cancel")
	}
}
