package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/loganintech/go-reddit/v2/reddit"
	"github.com/taratriia/market-analyzer/internal/domain"
	"golang.org/x/time/rate"
)

// APISource talks to Reddit through the authenticated API.
type APISource struct {
	client  *reddit.Client
	limiter *rate.Limiter
	scope   string
}

// NewAPISource requires a userAgent string to comply with Reddit's API rules.
// scope is the subreddit searches are restricted to ("all" for site-wide).
func NewAPISource(id, secret, user, pass, userAgent, scope string) (*APISource, error) {
	creds := reddit.Credentials{ID: id, Secret: secret, Username: user, Password: pass}

	client, err := reddit.NewClient(creds, reddit.WithUserAgent(userAgent))
	if err != nil {
		return nil, err
	}

	// API Rate Limit: ~60 reqs/min (safe buffer)
	limiter := rate.NewLimiter(rate.Every(1*time.Second), 1)

	return &APISource{client: client, limiter: limiter, scope: scope}, nil
}

func (s *APISource) SearchPosts(ctx context.Context, term string, limit int, sort string) ([]domain.Post, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	opts := &reddit.ListPostSearchOptions{
		ListPostOptions: reddit.ListPostOptions{
			ListOptions: reddit.ListOptions{Limit: limit},
		},
		Sort: sort,
	}
	posts, _, err := s.client.Subreddit.SearchPosts(ctx, term, s.scope, opts)
	if err != nil {
		return nil, fmt.Errorf("authenticated api error: %w", err)
	}

	result := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		result = append(result, domain.Post{ID: p.ID, Title: p.Title})
	}
	return result, nil
}

func (s *APISource) PostComments(ctx context.Context, postID string) ([]domain.Comment, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	pc, _, err := s.client.Post.Get(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("authenticated api error: %w", err)
	}

	var out []domain.Comment
	flatten(pc.Comments, &out)
	return out, nil
}

// flatten walks the comment tree in the order the API returned it. Replies
// that came back inline are included; "load more" stubs are never expanded.
func flatten(comments []*reddit.Comment, out *[]domain.Comment) {
	for _, c := range comments {
		if c == nil {
			continue
		}
		var created time.Time
		if c.Created != nil {
			created = c.Created.Time
		}
		*out = append(*out, domain.Comment{
			ID:      c.ID,
			Body:    c.Body,
			Score:   c.Score,
			Created: created,
		})
		flatten(c.Replies.Comments, out)
	}
}
