package config

import (
	"os"
	"time"
)

type Hint struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// NewHint never fails on a missing key: without one the hint service is
// simply unavailable.
func NewHint() (*Hint, error) {
	key, _, err := lookupSecret("HINT_API_KEY")
	if err != nil {
		return nil, err
	}

	model, ok := os.LookupEnv("HINT_MODEL")
	if !ok || model == "" {
		model = "gemini-2.0-flash"
	}

	baseURL, ok := os.LookupEnv("HINT_BASE_URL")
	if !ok || baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}

	timeout, err := lookupDuration("HINT_TIMEOUT", 20*time.Second)
	if err != nil {
		return nil, err
	}

	return &Hint{APIKey: key, Model: model, BaseURL: baseURL, Timeout: timeout}, nil
}

func (h Hint) Enabled() bool {
	return h.APIKey != ""
}
