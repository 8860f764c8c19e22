package conversation

import (
	"fmt"
	"math"
	"slices"
)

const (
	MinTemperature  = 0.0
	MaxTemperature  = 1.0
	TemperatureStep = 0.01

	MinTokenBudget  = 256
	MaxTokenBudget  = 4096
	TokenBudgetStep = 256

	DefaultModel       = "gpt-3.5-turbo"
	DefaultTemperature = 0.7
	DefaultTokenBudget = 4096
)

// Models returns the selectable completion models.
func Models() []string {
	return []string{"gpt-3.5-turbo", "gpt-4", "gpt-4o"}
}

type Settings struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	TokenBudget int     `json:"token_budget"`
}

func DefaultSettings() Settings {
	return Settings{
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		TokenBudget: DefaultTokenBudget,
	}
}

// Validate reports every out-of-range field at once.
func (s Settings) Validate() error {
	fields := map[string]string{}
	if !slices.Contains(Models(), s.Model) {
		fields["model"] = fmt.Sprintf("unknown model %q", s.Model)
	}
	if msg := checkTemperature(s.Temperature); msg != "" {
		fields["temperature"] = msg
	}
	if msg := checkTokenBudget(s.TokenBudget); msg != "" {
		fields["token_budget"] = msg
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func checkTemperature(t float64) string {
	if math.IsNaN(t) || t < MinTemperature || t > MaxTemperature {
		return fmt.Sprintf("must be between %.1f and %.1f", MinTemperature, MaxTemperature)
	}
	return ""
}

func checkTokenBudget(n int) string {
	if n < MinTokenBudget || n > MaxTokenBudget {
		return fmt.Sprintf("must be between %d and %d", MinTokenBudget, MaxTokenBudget)
	}
	return ""
}
