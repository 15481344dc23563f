package clients

import (
	"fmt"
	"sync"

	"github.com/taratriia/market-analyzer/internal/collector"
	"github.com/taratriia/market-analyzer/internal/config"
	"github.com/taratriia/market-analyzer/internal/domain"
	"github.com/taratriia/market-analyzer/internal/summarizer"
)

// Registry owns the process-wide collaborator handles. Each handle is
// initialized at most once, on first use; concurrent first sessions race
// into a single initialization attempt whose outcome (including failure)
// is cached for the life of the process.
type Registry struct {
	cfg config.Config

	sourceOnce sync.Once
	source     domain.Source
	sourceErr  error

	completerOnce sync.Once
	completer     domain.Completer
	completerErr  error
}

func NewRegistry(cfg config.Config) *Registry {
	return &Registry{cfg: cfg}
}

func (r *Registry) Source() (domain.Source, error) {
	r.sourceOnce.Do(func() {
		r.source, r.sourceErr = collector.NewSource(r.cfg)
	})
	return r.source, r.sourceErr
}

func (r *Registry) Completer() (domain.Completer, error) {
	r.completerOnce.Do(func() {
		if r.cfg.OpenRouterAPIKey == "" {
			r.completerErr = fmt.Errorf("OPENROUTER_API_KEY is not set")
			return
		}
		r.completer = summarizer.NewOpenRouterClient(
			r.cfg.OpenRouterAPIKey,
			r.cfg.AIModel,
			r.cfg.Temperature,
			r.cfg.MaxTokens,
		)
	})
	return r.completer, r.completerErr
}
