package ui

import (
	"context"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samvad-hq/tweet-likes-predictor/internal/app"
	"github.com/samvad-hq/tweet-likes-predictor/internal/domain"
	"github.com/samvad-hq/tweet-likes-predictor/internal/logger"
	"github.com/samvad-hq/tweet-likes-predictor/internal/scoring"
)

// Service is what the web front-end needs from the predictor.
type Service interface {
	Submit(ctx context.Context, text string) app.Outcome
	ConfigStatus() scoring.Status
	History(limit int) ([]domain.PredictionRecord, error)
}

type handler struct {
	svc Service
	log logger.Logger
}

type pageData struct {
	Text   string
	Status scoring.Status
	Panel  *Panel
}

// NewRouter serves the single-page front-end.
func NewRouter(svc Service, log logger.Logger) *gin.Engine {
	if log == nil {
		log = logger.NopLogger{}
	}
	h := &handler{svc: svc, log: log}

	r := gin.New()
	r.Use(gin.Recovery())
	r.SetHTMLTemplate(template.Must(template.New("page").Parse(pageTemplate)))

	r.GET("/", h.index)
	r.POST("/predict", h.predict)
	r.GET("/history", h.history)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func (h *handler) index(c *gin.Context) {
	c.HTML(http.StatusOK, "page", pageData{Status: h.svc.ConfigStatus()})
}

// predict always answers 200: failures are rendered as an error panel.
func (h *handler) predict(c *gin.Context) {
	text := c.PostForm("tweet")
	outcome := h.svc.Submit(c.Request.Context(), text)
	panel := NewPanel(outcome)
	c.HTML(http.StatusOK, "page", pageData{
		Text:   text,
		Status: h.svc.ConfigStatus(),
		Panel:  &panel,
	})
}

func (h *handler) history(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	recs, err := h.svc.History(limit)
	if err != nil {
		h.log.ErrorObj("history read failed", "history_error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "history unavailable"})
		return
	}
	if recs == nil {
		recs = []domain.PredictionRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"predictions": recs})
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Tweet Likes Predictor</title>
  <style>
    body { font-family: sans-serif; max-width: 46rem; margin: 2rem auto; }
    textarea { width: 100%; height: 8.75rem; }
    .panel { padding: .75rem 1rem; margin-top: 1rem; border-radius: .4rem; }
    .success { background: #e6f4ea; } .warning { background: #fff4e5; } .error { background: #fdecea; }
    pre { white-space: pre-wrap; background: #f6f8fa; padding: .5rem; }
  </style>
</head>
<body>
  <h1>Tweet Likes Prediction</h1>
  <p>Enter a tweet: it is scored by the remote model and the predicted number of likes and engagement level are shown.</p>

  <details id="config-status">
    <summary>Debug config</summary>
    <ul>
      <li>SCORING_URL set: <span class="url-set">{{.Status.ScoringURLSet}}</span></li>
      <li>API_KEY set: <span class="key-set">{{.Status.APIKeySet}}</span></li>
      <li>DEPLOYMENT_NAME: <span class="deployment">{{if .Status.DeploymentName}}{{.Status.DeploymentName}}{{else}}(empty){{end}}</span></li>
    </ul>
  </details>

  <form method="post" action="/predict">
    <label for="tweet">Tweet text</label>
    <textarea id="tweet" name="tweet" placeholder="Ex: Just deployed my first model 🚀">{{.Text}}</textarea>
    <button type="submit">Predict</button>
  </form>

  {{with .Panel}}
  <div id="result" class="panel {{.Kind}}">
    <h2 class="title">{{.Title}}</h2>
    {{if eq .Kind "success"}}
    <p>Predicted likes: <strong class="likes">{{.Likes}}</strong></p>
    <p>Interpretation: <strong class="label">{{.Label}}</strong></p>
    <details><summary>Raw endpoint response</summary><pre class="raw">{{.RawJSON}}</pre></details>
    {{else}}
    {{if .Detail}}<pre class="detail">{{.Detail}}</pre>{{end}}
    {{if .Body}}<pre class="body">{{.Body}}</pre>{{end}}
    {{end}}
  </div>
  {{end}}
</body>
</html>
`
