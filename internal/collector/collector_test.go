package collector

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taratriia/market-analyzer/internal/domain"
)

type fakeSource struct {
	posts      []domain.Post
	comments   map[string][]domain.Comment
	searchErr  error
	commentErr map[string]error

	searchCalls  int
	commentCalls []string
}

func (f *fakeSource) SearchPosts(ctx context.Context, term string, limit int, sort string) ([]domain.Post, error) {
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.posts, nil
}

func (f *fakeSource) PostComments(ctx context.Context, postID string) ([]domain.Comment, error) {
	f.commentCalls = append(f.commentCalls, postID)
	if err := f.commentErr[postID]; err != nil {
		return nil, err
	}
	return f.comments[postID], nil
}

func validComment(id string, score int) domain.Comment {
	return domain.Comment{
		ID:      id,
		Body:    fmt.Sprintf("comment %s with more than enough words to clear every filter in the suite", id),
		Score:   score,
		Created: time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
	}
}

func testCollector(source domain.Source, limits Limits) *Collector {
	c := New(source, limits, slog.New(slog.NewTextHandler(io.Discard, nil)))
	c.postPause = 0
	return c
}

func recorder() (*[]domain.Event, domain.Emitter) {
	events := &[]domain.Event{}
	return events, func(ev domain.Event) error {
		*events = append(*events, ev)
		return nil
	}
}

func defaultLimits() Limits {
	return Limits{
		PostsLimit:  25,
		SortOrder:   "comments",
		TotalTarget: 100,
		MaxPerPost:  10,
		MinWords:    10,
		MinScore:    1,
	}
}

func TestCollectFiltersAndFormats(t *testing.T) {
	source := &fakeSource{
		posts: []domain.Post{{ID: "p1", Title: "Coffee gear"}},
		comments: map[string][]domain.Comment{
			"p1": {
				validComment("c1", 5),
				{ID: "c2", Body: "[removed]", Score: 50},
				validComment("c3", 2),
			},
		},
	}

	_, emit := recorder()
	collected, err := testCollector(source, defaultLimits()).Collect(context.Background(), "coffee", emit)
	require.NoError(t, err)

	require.Len(t, collected, 2)
	assert.Equal(t, "c1", collected[0].CommentID)
	assert.Equal(t, "c3", collected[1].CommentID)
	assert.Equal(t, "p1", collected[0].PostID)
	assert.Equal(t, "Coffee gear", collected[0].PostTitle)
	assert.Equal(t, "2024-05-01 12:30:00 UTC", collected[0].CommentUTC)
}

func TestCollectDeduplicatesAcrossPosts(t *testing.T) {
	dup := validComment("dup", 3)
	source := &fakeSource{
		posts: []domain.Post{{ID: "p1", Title: "first"}, {ID: "p2", Title: "second"}},
		comments: map[string][]domain.Comment{
			"p1": {dup, validComment("c1", 2)},
			"p2": {dup, validComment("c2", 2)},
		},
	}

	_, emit := recorder()
	collected, err := testCollector(source, defaultLimits()).Collect(context.Background(), "term", emit)
	require.NoError(t, err)

	ids := map[string]int{}
	for _, c := range collected {
		ids[c.CommentID]++
	}
	assert.Equal(t, 1, ids["dup"], "duplicate id must be collected at most once")
	assert.Len(t, collected, 3)
}

func TestCollectEnforcesCaps(t *testing.T) {
	source := &fakeSource{comments: map[string][]domain.Comment{}}
	for p := 0; p < 5; p++ {
		id := fmt.Sprintf("p%d", p)
		source.posts = append(source.posts, domain.Post{ID: id, Title: id})
		for c := 0; c < 20; c++ {
			source.comments[id] = append(source.comments[id], validComment(fmt.Sprintf("%s_c%d", id, c), 2))
		}
	}

	limits := defaultLimits()
	limits.MaxPerPost = 3
	limits.TotalTarget = 8

	_, emit := recorder()
	collected, err := testCollector(source, limits).Collect(context.Background(), "term", emit)
	require.NoError(t, err)

	assert.Len(t, collected, 8)
	perPost := map[string]int{}
	for _, c := range collected {
		perPost[c.PostID]++
	}
	for id, n := range perPost {
		assert.LessOrEqual(t, n, 3, "post %s exceeded the per-post cap", id)
	}
	// 3 + 3 + 2 = 8: the target is met inside the third post, so the
	// remaining posts are never fetched.
	assert.Equal(t, []string{"p0", "p1", "p2"}, source.commentCalls)
}

func TestCollectOrderFollowsRankThenTraversal(t *testing.T) {
	source := &fakeSource{
		posts: []domain.Post{{ID: "p1", Title: "a"}, {ID: "p2", Title: "b"}},
		comments: map[string][]domain.Comment{
			"p1": {validComment("a1", 9), validComment("a2", 1)},
			"p2": {validComment("b1", 200), validComment("b2", 1)},
		},
	}

	_, emit := recorder()
	collected, err := testCollector(source, defaultLimits()).Collect(context.Background(), "term", emit)
	require.NoError(t, err)

	var got []string
	for _, c := range collected {
		got = append(got, c.CommentID)
	}
	// No re-sorting by score: rank order, then traversal order.
	assert.Equal(t, []string{"a1", "a2", "b1", "b2"}, got)
}

func TestCollectSkipsFailingPost(t *testing.T) {
	source := &fakeSource{
		posts: []domain.Post{{ID: "p1", Title: "a"}, {ID: "p2", Title: "b"}},
		comments: map[string][]domain.Comment{
			"p2": {validComment("c1", 2)},
		},
		commentErr: map[string]error{"p1": fmt.Errorf("503 from upstream")},
	}

	events, emit := recorder()
	collected, err := testCollector(source, defaultLimits()).Collect(context.Background(), "term", emit)
	require.NoError(t, err, "a single post failure must not abort the session")

	require.Len(t, collected, 1)
	assert.Equal(t, "c1", collected[0].CommentID)
	for _, ev := range *events {
		assert.NotEqual(t, domain.EventError, ev.Type, "per-post failures are never surfaced as error events")
	}
}

func TestCollectSearchFailureIsFatal(t *testing.T) {
	source := &fakeSource{searchErr: fmt.Errorf("reddit is down")}

	_, emit := recorder()
	collected, err := testCollector(source, defaultLimits()).Collect(context.Background(), "term", emit)

	require.Error(t, err)
	assert.ErrorContains(t, err, "search failed")
	assert.Empty(t, collected)
}

func TestCollectStopsWhenEmitFails(t *testing.T) {
	source := &fakeSource{
		posts:    []domain.Post{{ID: "p1", Title: "a"}},
		comments: map[string][]domain.Comment{"p1": {validComment("c1", 2)}},
	}

	sentinel := fmt.Errorf("peer gone")
	sends := 0
	emit := func(domain.Event) error {
		sends++
		if sends >= 2 {
			return sentinel
		}
		return nil
	}

	_, err := testCollector(source, defaultLimits()).Collect(context.Background(), "term", emit)
	require.ErrorIs(t, err, sentinel)
	assert.Empty(t, source.commentCalls, "no comment fetches after the client is gone")
}

func TestCollectHonorsCancelledContext(t *testing.T) {
	source := &fakeSource{
		posts:    []domain.Post{{ID: "p1", Title: "a"}, {ID: "p2", Title: "b"}},
		comments: map[string][]domain.Comment{"p1": {validComment("c1", 2)}},
	}

	ctx, cancel := context.WithCancel(context.Background())
	_, emit := recorder()
	c := testCollector(source, defaultLimits())
	c.postPause = time.Hour // park in the inter-post pause
	cancel()

	collected, err := c.Collect(ctx, "term", emit)
	require.ErrorIs(t, err, context.Canceled)
	assert.Len(t, collected, 1, "keeps what was already collected")
}
