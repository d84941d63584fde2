package scoring

import (
	"strings"
	"time"
)

const (
	EnvScoringURL     = "AZUREML_SCORING_URL"
	EnvAPIKey         = "AZUREML_API_KEY"
	EnvDeploymentName = "AZUREML_DEPLOYMENT_NAME"

	// DeploymentHeader routes the call to a specific model deployment behind the endpoint.
	DeploymentHeader = "azureml-model-deployment"

	// RequestTimeout bounds the single scoring call.
	RequestTimeout = 30 * time.Second
)

// Resolver yields a setting value or def. config.Resolver satisfies it.
type Resolver interface {
	Resolve(key, def string) string
}

// Settings are the resolved endpoint settings. They are immutable after startup.
type Settings struct {
	ScoringURL     string
	APIKey         string
	DeploymentName string
}

// ResolveSettings reads the endpoint settings through r.
func ResolveSettings(r Resolver) Settings {
	return Settings{
		ScoringURL:     r.Resolve(EnvScoringURL, ""),
		APIKey:         r.Resolve(EnvAPIKey, ""),
		DeploymentName: r.Resolve(EnvDeploymentName, ""),
	}
}

// Missing lists the names of required settings that are empty.
func (s Settings) Missing() []string {
	var missing []string
	if strings.TrimSpace(s.ScoringURL) == "" {
		missing = append(missing, EnvScoringURL)
	}
	if strings.TrimSpace(s.APIKey) == "" {
		missing = append(missing, EnvAPIKey)
	}
	return missing
}

// Status is a secret-free summary of Settings, safe to log or show.
type Status struct {
	ScoringURLSet  bool   `json:"scoring_url_set"`
	APIKeySet      bool   `json:"api_key_set"`
	DeploymentName string `json:"deployment_name"`
}

func (s Settings) Status() Status {
	return Status{
		ScoringURLSet:  strings.TrimSpace(s.ScoringURL) != "",
		APIKeySet:      strings.TrimSpace(s.APIKey) != "",
		DeploymentName: strings.TrimSpace(s.DeploymentName),
	}
}

func (s Settings) headers() map[string]string {
	headers := map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + s.APIKey,
	}
	if name := strings.TrimSpace(s.DeploymentName); name != "" {
		headers[DeploymentHeader] = name
	}
	return headers
}
