package openai

import (
	"os"
	"time"
)

// Config for the chat-completions client.
type Config struct {
	APIKey  string        // falls back to env OPENAI_API_KEY
	BaseURL string        // default https://api.openai.com/v1
	Model   string        // e.g. "gpt-4"
	Timeout time.Duration // http client timeout

	// ObserveDuration, when set, is called after every provider call
	// (successful or not) with the operation name and elapsed time.
	ObserveDuration func(operation string, duration time.Duration)
}

func (c Config) withDefaults() Config {
	if c.APIKey == "" {
		c.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.BaseURL == "" {
		c.BaseURL = "https://api.openai.com/v1"
	}
	if c.Model == "" {
		c.Model = "gpt-4"
	}
	if c.Timeout <= 0 {
		c.Timeout = 120 * time.Second
	}
	return c
}
