package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/samvad-hq/tweet-likes-predictor/internal/config"
	"github.com/samvad-hq/tweet-likes-predictor/internal/domain"
	"github.com/samvad-hq/tweet-likes-predictor/internal/scoring"
	"github.com/samvad-hq/tweet-likes-predictor/pkg/publishers"
)

// fakeScorer returns a canned prediction or error and counts calls.
type fakeScorer struct {
	pred  scoring.Prediction
	err   error
	calls int
}

func (f *fakeScorer) Predict(_ context.Context, _ string) (scoring.Prediction, error) {
	f.calls++
	return f.pred, f.err
}

// fakeStore records saved predictions and can inject errors.
type fakeStore struct {
	mu      sync.Mutex
	saved   []domain.PredictionRecord
	saveErr error
}

func (f *fakeStore) Close() error { return nil }
func (f *fakeStore) SavePrediction(rec domain.PredictionRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, rec)
	return nil
}
func (f *fakeStore) RecentPredictions(limit int) ([]domain.PredictionRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if limit > len(f.saved) {
		limit = len(f.saved)
	}
	return f.saved[:limit], nil
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	events []publishers.Event
	err    error
}

func (r *recordingPublisher) ID() string   { return "rec" }
func (r *recordingPublisher) Type() string { return "test" }
func (r *recordingPublisher) Publish(_ context.Context, evt publishers.Event) error {
	r.events = append(r.events, evt)
	return r.err
}

func TestSubmitEmptyTextNeverReachesScorer(t *testing.T) {
	scorer := &fakeScorer{}
	p := New(Deps{Scorer: scorer})

	for _, text := range []string{"", "   ", "\n\t"} {
		out := p.Submit(context.Background(), text)
		if !errors.Is(out.Err, scoring.ErrEmptyText) {
			t.Fatalf("expected ErrEmptyText for %q, got %v", text, out.Err)
		}
	}
	if scorer.calls != 0 {
		t.Fatalf("scorer must not be called, got %d calls", scorer.calls)
	}
}

func TestSubmitSuccessRecordsAndPublishes(t *testing.T) {
	scorer := &fakeScorer{pred: scoring.Prediction{
		Likes:   150,
		Raw:     map[string]any{"predictions": []any{json.Number("150")}},
		RawBody: []byte(`{"predictions":[150]}`),
	}}
	store := &fakeStore{}
	pub := &recordingPublisher{}
	p := New(Deps{
		Scorer:   scorer,
		Settings: scoring.Settings{ScoringURL: "u", APIKey: "k", DeploymentName: "blue"},
		Store:    store,
		Fanout:   publishers.NewFanout([]publishers.Publisher{pub}),
	})
	p.newID = func() string { return "pred-1" }

	out := p.Submit(context.Background(), "big news")
	if !out.OK() {
		t.Fatalf("unexpected error %v", out.Err)
	}
	if out.Level != domain.HighEngagement || out.Prediction.Likes != 150 {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if len(store.saved) != 1 || store.saved[0].ID != "pred-1" || store.saved[0].Deployment != "blue" {
		t.Fatalf("history not recorded: %+v", store.saved)
	}
	if string(store.saved[0].Raw) != `{"predictions":[150]}` {
		t.Fatalf("raw response not kept: %s", store.saved[0].Raw)
	}
	if len(pub.events) != 1 || pub.events[0].Label != "High engagement" {
		t.Fatalf("event not published: %+v", pub.events)
	}
}

func TestSubmitSideEffectFailuresDoNotFailRequest(t *testing.T) {
	scorer := &fakeScorer{pred: scoring.Prediction{Likes: 5}}
	p := New(Deps{
		Scorer: scorer,
		Store:  &fakeStore{saveErr: errors.New("disk full")},
		Fanout: publishers.NewFanout([]publishers.Publisher{&recordingPublisher{err: errors.New("down")}}),
	})

	out := p.Submit(context.Background(), "hello")
	if !out.OK() || out.Level != domain.LowEngagement {
		t.Fatalf("expected success despite side-effect failures, got %+v", out)
	}
}

func TestSubmitCarriesScorerError(t *testing.T) {
	want := &scoring.HTTPError{StatusCode: 503, Body: "busy"}
	store := &fakeStore{}
	p := New(Deps{Scorer: &fakeScorer{err: want}, Store: store})

	out := p.Submit(context.Background(), "hello")
	var httpErr *scoring.HTTPError
	if !errors.As(out.Err, &httpErr) || httpErr.Body != "busy" {
		t.Fatalf("expected HTTPError, got %v", out.Err)
	}
	if len(store.saved) != 0 {
		t.Fatalf("failed predictions must not be recorded")
	}
}

func TestHistoryUsesDefaultLimit(t *testing.T) {
	store := &fakeStore{}
	for i := 0; i < 4; i++ {
		store.saved = append(store.saved, domain.PredictionRecord{ID: string(rune('a' + i))})
	}
	p := New(Deps{Store: store, HistoryLimit: 2})

	recs, err := p.History(0)
	if err != nil || len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d err=%v", len(recs), err)
	}
}

func TestNewPredictorEndToEnd(t *testing.T) {
	t.Setenv(scoring.EnvScoringURL, "")
	t.Setenv(scoring.EnvAPIKey, "")
	t.Setenv(scoring.EnvDeploymentName, "")

	scoringSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer file-key" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		_, _ = w.Write([]byte(`{"predictions":[12.8]}`))
	}))
	defer scoringSrv.Close()

	hookCalls := make(chan publishers.Event, 1)
	hookSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var evt publishers.Event
		_ = json.NewDecoder(r.Body).Decode(&evt)
		hookCalls <- evt
	}))
	defer hookSrv.Close()

	dir := t.TempDir()
	secrets := filepath.Join(dir, "secrets.yaml")
	writeFile(t, secrets, "AZUREML_SCORING_URL: "+scoringSrv.URL+"\nAZUREML_API_KEY: file-key\n")
	pubFile := filepath.Join(dir, "publishers.yaml")
	writeFile(t, pubFile, "publishers:\n  - id: hook\n    type: http\n    http:\n      url: "+hookSrv.URL+"\n")

	cfg := &config.Config{
		SecretsFile:            secrets,
		PublishersFile:         pubFile,
		StorageType:            "bbolt",
		BBoltPath:              filepath.Join(dir, "history.db"),
		HistoryTTL:             time.Hour,
		HistoryCleanupInterval: time.Hour,
		HistoryLimit:           5,
	}
	p, err := NewPredictor(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewPredictor: %v", err)
	}
	defer p.Close()

	status := p.ConfigStatus()
	if !status.ScoringURLSet || !status.APIKeySet || status.DeploymentName != "" {
		t.Fatalf("unexpected config status %+v", status)
	}

	out := p.Submit(context.Background(), "tweet")
	if !out.OK() || out.Prediction.Likes != 12 || out.Level != domain.MediumEngagement {
		t.Fatalf("unexpected outcome %+v", out)
	}

	select {
	case evt := <-hookCalls:
		if evt.Likes != 12 {
			t.Fatalf("unexpected event %+v", evt)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("webhook not called")
	}

	recs, err := p.History(0)
	if err != nil || len(recs) != 1 || recs[0].Text != "tweet" {
		t.Fatalf("unexpected history %+v err=%v", recs, err)
	}
}

func TestNewPredictorMissingSettingsSurfacesAtSubmit(t *testing.T) {
	t.Setenv(scoring.EnvScoringURL, "")
	t.Setenv(scoring.EnvAPIKey, "")

	p, err := NewPredictor(context.Background(), &config.Config{
		SecretsFile: filepath.Join(t.TempDir(), "absent.yaml"),
		StorageType: "none",
	}, nil)
	if err != nil {
		t.Fatalf("NewPredictor: %v", err)
	}

	out := p.Submit(context.Background(), "tweet")
	var cfgErr *scoring.ConfigurationError
	if !errors.As(out.Err, &cfgErr) || len(cfgErr.Missing) != 2 {
		t.Fatalf("expected ConfigurationError naming both settings, got %v", out.Err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
