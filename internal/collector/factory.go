package collector

import (
	"fmt"

	"github.com/taratriia/market-analyzer/internal/config"
	"github.com/taratriia/market-analyzer/internal/domain"
)

// NewSource selects the correct implementation based on the configured mode.
func NewSource(cfg config.Config) (domain.Source, error) {
	switch cfg.CollectorMode {
	case "api":
		if cfg.RedditClientID == "" || cfg.RedditClientSecret == "" {
			return nil, fmt.Errorf("REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET are required for api mode")
		}
		return NewAPISource(
			cfg.RedditClientID,
			cfg.RedditClientSecret,
			cfg.RedditUsername,
			cfg.RedditPassword,
			cfg.RedditUserAgent,
			cfg.SubredditScope,
		)
	case "public":
		if cfg.RedditUserAgent == "" {
			return nil, fmt.Errorf("REDDIT_USER_AGENT is required for public mode")
		}
		return NewPublicSource(cfg.RedditUserAgent, cfg.SubredditScope)
	case "mock":
		return NewMockSource(), nil
	default:
		return nil, fmt.Errorf("unknown COLLECTOR_MODE: %s (use 'api', 'public', or 'mock')", cfg.CollectorMode)
	}
}
