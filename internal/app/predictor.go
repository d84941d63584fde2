package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/samvad-hq/tweet-likes-predictor/internal/config"
	"github.com/samvad-hq/tweet-likes-predictor/internal/domain"
	"github.com/samvad-hq/tweet-likes-predictor/internal/logger"
	"github.com/samvad-hq/tweet-likes-predictor/internal/scoring"
	"github.com/samvad-hq/tweet-likes-predictor/internal/storage"
	"github.com/samvad-hq/tweet-likes-predictor/pkg/publishers"
)

// Scorer is the prediction capability the Predictor drives. *scoring.Client satisfies it.
type Scorer interface {
	Predict(ctx context.Context, text string) (scoring.Prediction, error)
}

// Outcome is the result of one user action. Err is nil on success.
type Outcome struct {
	Text       string
	Prediction scoring.Prediction
	Level      domain.EngagementLevel
	Record     domain.PredictionRecord
	Err        error
}

// OK reports whether the prediction succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// Deps are the collaborators of a Predictor.
type Deps struct {
	Scorer       Scorer
	Settings     scoring.Settings
	Store        storage.Store
	Fanout       *publishers.Fanout
	Log          logger.Logger
	HistoryLimit int
}

// Predictor runs the request lifecycle: validate, score, label, record, publish.
type Predictor struct {
	scorer       Scorer
	settings     scoring.Settings
	store        storage.Store
	fanout       *publishers.Fanout
	log          logger.Logger
	historyLimit int
	now          func() time.Time
	newID        func() string
}

// New builds a Predictor from explicit dependencies.
func New(d Deps) *Predictor {
	if d.Log == nil {
		d.Log = logger.NopLogger{}
	}
	if d.Store == nil {
		d.Store, _ = storage.NewStore("none", "", storage.Options{})
	}
	if d.HistoryLimit <= 0 {
		d.HistoryLimit = 10
	}
	return &Predictor{
		scorer:       d.Scorer,
		settings:     d.Settings,
		store:        d.Store,
		fanout:       d.Fanout,
		log:          d.Log,
		historyLimit: d.HistoryLimit,
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// NewPredictor builds a Predictor runtime from config: endpoint settings, history store and publishers.
func NewPredictor(ctx context.Context, cfg *config.Config, log logger.Logger) (*Predictor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	secrets, err := config.LoadSecretsFile(cfg.SecretsFile)
	if err != nil {
		log.WarnObj("secrets file unavailable; using environment only", "secrets_error", map[string]any{
			"path":  cfg.SecretsFile,
			"error": err.Error(),
		})
	}
	settings := scoring.ResolveSettings(config.NewResolver(secrets))
	log.InfoObj("scoring settings resolved", "scoring_config", settings.Status())

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		HistoryTTL:      cfg.HistoryTTL,
		CleanupInterval: cfg.HistoryCleanupInterval,
		MemoryCapacity:  cfg.HistoryMemoryCapacity,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"history_ttl_seconds":      int(cfg.HistoryTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.HistoryCleanupInterval.Seconds()),
	})

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		store.Close()
		return nil, err
	}

	return New(Deps{
		Scorer:       scoring.NewClient(settings, nil, log),
		Settings:     settings,
		Store:        store,
		Fanout:       fanout,
		Log:          log,
		HistoryLimit: cfg.HistoryLimit,
	}), nil
}

func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if strings.TrimSpace(path) == "" {
		return publishers.NewFanout(nil), nil
	}

	defs, err := publishers.LoadDefinitions(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers file: %w", err)
	}
	enabled := defs.Enabled()
	pubs, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, cfg := range enabled {
		summaries = append(summaries, map[string]string{"id": cfg.ID, "type": cfg.Type})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubs), nil
}

// Submit handles one trigger action. It never panics; every failure is carried in Outcome.Err.
func (p *Predictor) Submit(ctx context.Context, text string) Outcome {
	out := Outcome{Text: text}
	if strings.TrimSpace(text) == "" {
		out.Err = scoring.ErrEmptyText
		return out
	}
	if p == nil || p.scorer == nil {
		out.Err = fmt.Errorf("predictor is not initialized")
		return out
	}

	start := p.now()
	pred, err := p.scorer.Predict(ctx, text)
	if err != nil {
		out.Err = err
		p.log.WarnObj("prediction failed", "prediction_error", map[string]any{
			"error":      err.Error(),
			"elapsed_ms": p.now().Sub(start).Milliseconds(),
		})
		return out
	}

	level := domain.Label(pred.Likes)
	out.Prediction = pred
	out.Level = level
	out.Record = domain.PredictionRecord{
		ID:         p.newID(),
		Text:       text,
		Likes:      pred.Likes,
		Label:      level.String(),
		Deployment: p.settings.Status().DeploymentName,
		Raw:        pred.RawBody,
		CreatedAt:  p.now().UTC(),
	}

	p.record(ctx, out.Record)

	p.log.InfoObj("prediction completed", "prediction_result", map[string]any{
		"prediction_id": out.Record.ID,
		"likes":         pred.Likes,
		"label":         out.Record.Label,
		"elapsed_ms":    p.now().Sub(start).Milliseconds(),
	})
	return out
}

// record saves to history and publishes downstream; failures are logged only.
func (p *Predictor) record(ctx context.Context, rec domain.PredictionRecord) {
	if err := p.store.SavePrediction(rec); err != nil {
		p.log.WarnObj("history save failed", "history_error", map[string]any{
			"prediction_id": rec.ID,
			"error":         err.Error(),
		})
	}

	if p.fanout.Size() == 0 {
		return
	}
	delivered, err := p.fanout.Publish(ctx, publishers.NewEvent(rec))
	if err != nil {
		p.log.WarnObj("prediction event publish failed", "publish_error", map[string]any{
			"prediction_id": rec.ID,
			"delivered":     delivered,
			"error":         err.Error(),
		})
	}
}

// ConfigStatus reports which endpoint settings are present without exposing them.
func (p *Predictor) ConfigStatus() scoring.Status {
	return p.settings.Status()
}

// History returns up to limit recent predictions, newest first. limit <= 0 uses the configured default.
func (p *Predictor) History(limit int) ([]domain.PredictionRecord, error) {
	if limit <= 0 {
		limit = p.historyLimit
	}
	return p.store.RecentPredictions(limit)
}

// Close releases the history store and publisher clients.
func (p *Predictor) Close() error {
	if p == nil {
		return nil
	}
	var errs []error
	if err := p.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	if err := p.fanout.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
