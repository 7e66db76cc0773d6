// Package predict defines the interface to token-classification model
// providers and a registry for constructing them by name. The model
// itself (weights, tokenizer, training) is external; providers only
// deliver per-token tag predictions for the pipeline to decode.
package predict

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"or-extraction-service/internal/models"
)

// Predictor produces token-level entity predictions for a transcript.
// Implementations must be safe for concurrent use.
type Predictor interface {
	// Predict returns one RawPrediction per token of text.
	Predict(ctx context.Context, text string) ([]models.RawPrediction, error)

	// Available reports whether the provider is ready to serve.
	Available() bool

	// Info returns provider metadata for diagnostics.
	Info() map[string]string
}

// Config is passed to provider constructors.
type Config struct {
	ModelDir            string
	ConfidenceThreshold float64
}

// Constructor builds a Predictor from configuration.
type Constructor func(cfg Config) (Predictor, error)

// Checker is the availability pre-check registered alongside a
// Constructor. It must stay cheap: inspect configuration and runtime
// prerequisites (model directory, required files) without constructing
// the provider or loading weights.
type Checker func(cfg Config) (available bool, warnings []string, err error)

type registration struct {
	ctor  Constructor
	check Checker
}

var (
	registryMu sync.RWMutex
	registry   = make(map[string]registration)
)

// Register adds a provider under a name. check may be nil for
// providers that are always available. Later registrations with the
// same name replace earlier ones.
func Register(name string, ctor Constructor, check Checker) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = registration{ctor: ctor, check: check}
}

// New constructs the named provider.
func New(name string, cfg Config) (Predictor, error) {
	registryMu.RLock()
	reg, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown predictor %q, available: %v", name, Available())
	}
	p, err := reg.ctor(cfg)
	if err != nil {
		return nil, fmt.Errorf("construct predictor %q: %w", name, err)
	}
	return p, nil
}

// Available lists registered provider names, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Validation is the result of a cheap pre-check on a provider
// configuration, run before any expensive construction.
type Validation struct {
	Valid     bool     `json:"valid"`
	Available bool     `json:"available"`
	Message   string   `json:"message"`
	Warnings  []string `json:"warnings"`
}

// Validate checks that name is registered and its pre-check passes.
// The provider is never constructed: validation stays cheap even for
// providers whose construction loads model weights.
func Validate(name string, cfg Config) Validation {
	registryMu.RLock()
	reg, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return Validation{Message: fmt.Sprintf("unknown predictor %q, available: %v", name, Available())}
	}

	v := Validation{Valid: true}
	if reg.check == nil {
		v.Available = true
		v.Message = fmt.Sprintf("predictor %q is valid and available", name)
		return v
	}
	avail, warnings, err := reg.check(cfg)
	v.Warnings = warnings
	if err != nil {
		v.Message = fmt.Sprintf("predictor %q pre-check failed: %v", name, err)
		return v
	}
	if !avail {
		v.Message = fmt.Sprintf("predictor %q is registered but not available", name)
		return v
	}
	v.Available = true
	v.Message = fmt.Sprintf("predictor %q is valid and available", name)
	return v
}
