package collector

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taratriia/market-analyzer/internal/domain"
)

// Limits fixes the collection parameters for one session.
type Limits struct {
	PostsLimit  int
	SortOrder   string
	TotalTarget int
	MaxPerPost  int
	MinWords    int
	MinScore    int
}

// Collector gathers filtered comments for one search term. Safe to share
// across sessions: all per-session state lives inside Collect.
type Collector struct {
	source domain.Source
	limits Limits
	logger *slog.Logger

	// pause between posts so one session doesn't hog the scheduler
	postPause time.Duration
}

func New(source domain.Source, limits Limits, logger *slog.Logger) *Collector {
	return &Collector{
		source:    source,
		limits:    limits,
		logger:    logger,
		postPause: 50 * time.Millisecond,
	}
}

// Collect runs one search and traverses the ranked posts in order,
// accumulating comments that pass the filter. Output order is post rank,
// then traversal order within each post; no re-sorting.
//
// A failed search is fatal and returned as an error. A failed comment
// traversal for a single post is logged and skipped. A failed emit (peer
// gone) or cancelled context aborts immediately with whatever was collected.
func (c *Collector) Collect(ctx context.Context, term string, emit domain.Emitter) ([]domain.CollectedComment, error) {
	if err := emit(domain.StatusEvent(fmt.Sprintf("Searching posts for '%s'...", term))); err != nil {
		return nil, err
	}

	// Search depth is fixed here: one query, no paging for more posts.
	posts, err := c.source.SearchPosts(ctx, term, c.limits.PostsLimit, c.limits.SortOrder)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	if err := emit(domain.StatusEvent(fmt.Sprintf("%d posts found initially.", len(posts)))); err != nil {
		return nil, err
	}

	collected := make([]domain.CollectedComment, 0, c.limits.TotalTarget)
	seen := make(map[string]struct{})

	for i, post := range posts {
		if len(collected) >= c.limits.TotalTarget {
			if err := emit(domain.StatusEvent(fmt.Sprintf("Total limit of %d comments reached.", c.limits.TotalTarget))); err != nil {
				return collected, err
			}
			break
		}

		msg := fmt.Sprintf("Processing post %d/%d: '%s'", i+1, len(posts), clipTitle(post.Title))
		if err := emit(domain.StatusEvent(msg)); err != nil {
			return collected, err
		}
		c.logger.Info("processing post", "rank", i+1, "post_id", post.ID)

		comments, err := c.source.PostComments(ctx, post.ID)
		if err != nil {
			// The post contributes whatever it already contributed; move on.
			c.logger.Warn("comment traversal failed", "post_id", post.ID, "error", err)
			continue
		}

		added := 0
		for _, cm := range comments {
			if len(collected) >= c.limits.TotalTarget || added >= c.limits.MaxPerPost {
				break
			}
			if _, dup := seen[cm.ID]; dup {
				continue
			}
			if !IsValid(cm, c.limits.MinWords, c.limits.MinScore) {
				continue
			}
			collected = append(collected, domain.CollectedComment{
				PostTitle:    post.Title,
				PostID:       post.ID,
				CommentID:    cm.ID,
				CommentBody:  cm.Body,
				CommentScore: cm.Score,
				CommentUTC:   cm.Created.UTC().Format("2006-01-02 15:04:05 UTC"),
			})
			seen[cm.ID] = struct{}{}
			added++
		}

		select {
		case <-ctx.Done():
			return collected, ctx.Err()
		case <-time.After(c.postPause):
		}
	}

	return collected, nil
}

func clipTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= 50 {
		return title
	}
	return string(runes[:50]) + "..."
}
