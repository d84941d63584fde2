package ui

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/samvad-hq/tweet-likes-predictor/internal/app"
	"github.com/samvad-hq/tweet-likes-predictor/internal/domain"
	"github.com/samvad-hq/tweet-likes-predictor/internal/scoring"
)

func init() { gin.SetMode(gin.TestMode) }

// fakeService answers Submit with a canned outcome, keeping empty-input semantics.
type fakeService struct {
	outcome   app.Outcome
	submitted []string
	history   []domain.PredictionRecord
	histErr   error
	lastLimit int
}

func (f *fakeService) Submit(_ context.Context, text string) app.Outcome {
	if strings.TrimSpace(text) == "" {
		return app.Outcome{Text: text, Err: scoring.ErrEmptyText}
	}
	f.submitted = append(f.submitted, text)
	return f.outcome
}

func (f *fakeService) ConfigStatus() scoring.Status {
	return scoring.Status{ScoringURLSet: true, APIKeySet: false}
}

func (f *fakeService) History(limit int) ([]domain.PredictionRecord, error) {
	f.lastLimit = limit
	return f.history, f.histErr
}

func postForm(t *testing.T, svc Service, text string) *goquery.Document {
	t.Helper()
	form := url.Values{"tweet": {text}}
	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	NewRouter(svc, nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestIndexShowsFormAndConfigStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter(&fakeService{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	if doc.Find(`form[action="/predict"] textarea[name="tweet"]`).Length() != 1 {
		t.Fatalf("form with tweet textarea missing")
	}
	if got := doc.Find("#config-status .url-set").Text(); got != "true" {
		t.Fatalf("url-set = %q", got)
	}
	if got := doc.Find("#config-status .deployment").Text(); got != "(empty)" {
		t.Fatalf("deployment = %q", got)
	}
	if doc.Find("#result").Length() != 0 {
		t.Fatalf("no result panel expected before submit")
	}
}

func TestPredictRendersSuccessPanel(t *testing.T) {
	svc := &fakeService{outcome: app.Outcome{
		Prediction: scoring.Prediction{Likes: 250, Raw: map[string]any{"predictions": []any{json.Number("250")}}},
		Level:      domain.HighEngagement,
	}}
	doc := postForm(t, svc, "launch day <3")

	result := doc.Find("#result")
	if !result.HasClass("success") {
		t.Fatalf("expected success panel, got class %q", result.AttrOr("class", ""))
	}
	if got := result.Find(".likes").Text(); got != "250" {
		t.Fatalf("likes = %q", got)
	}
	if got := result.Find(".label").Text(); got != "High engagement" {
		t.Fatalf("label = %q", got)
	}
	if !strings.Contains(result.Find("pre.raw").Text(), `"predictions"`) {
		t.Fatalf("raw response missing")
	}
	if got := doc.Find("textarea").Text(); got != "launch day <3" {
		t.Fatalf("input not echoed back, got %q", got)
	}
}

func TestPredictRendersHTTPErrorBody(t *testing.T) {
	svc := &fakeService{outcome: app.Outcome{Err: &scoring.HTTPError{StatusCode: 500, Body: "upstream exploded"}}}
	doc := postForm(t, svc, "hello")

	result := doc.Find("#result")
	if !result.HasClass("error") {
		t.Fatalf("expected error panel")
	}
	if got := result.Find("pre.body").Text(); got != "upstream exploded" {
		t.Fatalf("body = %q", got)
	}
	if !strings.Contains(result.Find("pre.detail").Text(), "500") {
		t.Fatalf("status missing from detail")
	}
}

func TestPredictEmptyInputShowsWarning(t *testing.T) {
	svc := &fakeService{}
	doc := postForm(t, svc, "   ")

	if !doc.Find("#result").HasClass("warning") {
		t.Fatalf("expected warning panel")
	}
	if len(svc.submitted) != 0 {
		t.Fatalf("empty input must not be submitted")
	}
}

func TestHistoryEndpoint(t *testing.T) {
	svc := &fakeService{history: []domain.PredictionRecord{{ID: "p1", Likes: 3, Label: "Low engagement"}}}
	rec := httptest.NewRecorder()
	NewRouter(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history?limit=5", nil))

	if rec.Code != http.StatusOK || svc.lastLimit != 5 {
		t.Fatalf("unexpected code=%d limit=%d", rec.Code, svc.lastLimit)
	}
	var body struct {
		Predictions []domain.PredictionRecord `json:"predictions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || len(body.Predictions) != 1 {
		t.Fatalf("unexpected body %s err=%v", rec.Body.String(), err)
	}

	rec = httptest.NewRecorder()
	NewRouter(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history?limit=abc", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad limit, got %d", rec.Code)
	}

	svc.histErr = errors.New("db locked")
	rec = httptest.NewRecorder()
	NewRouter(svc, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on store error, got %d", rec.Code)
	}
}
