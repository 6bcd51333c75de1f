// Package llm picks the language model provider from configuration.
package llm

import (
	"fmt"
	"os"
	"strings"

	"github.com/lehigh-university-libraries/sitebuilder/internal/gemini"
	"github.com/lehigh-university-libraries/sitebuilder/internal/ollama"
	"github.com/lehigh-university-libraries/sitebuilder/internal/openai"
	"github.com/lehigh-university-libraries/sitebuilder/internal/providers"
)

const (
	DefaultProvider    = "gemini"
	DefaultTemperature = 0.1
)

// New returns the provider called name. Empty name and model fall back to
// LLM_PROVIDER and the provider's model variable.
func New(name, model string, temperature float64) (providers.Provider, error) {
	if name == "" {
		name = os.Getenv("LLM_PROVIDER")
		if name == "" {
			name = DefaultProvider
		}
	}
	name = strings.ToLower(strings.TrimSpace(name))

	if model == "" {
		model = DefaultModel(name)
	}
	config := providers.Config{Model: model, Temperature: temperature}

	switch name {
	case "gemini", "google":
		return gemini.New(config), nil
	case "openai":
		return openai.New(config), nil
	case "ollama":
		return ollama.New(config), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}

// DefaultModel reads the model override for provider from the environment.
func DefaultModel(provider string) string {
	switch provider {
	case "gemini", "google":
		model := os.Getenv("GEMINI_MODEL")
		if model == "" {
			return gemini.DefaultModel
		}
		return model
	case "openai":
		model := os.Getenv("OPENAI_MODEL")
		if model == "" {
			return openai.DefaultModel
		}
		return model
	case "ollama":
		model := os.Getenv("OLLAMA_MODEL")
		if model == "" {
			return ollama.DefaultModel
		}
		return model
	default:
		return ""
	}
}
