package collector

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/taratriia/market-analyzer/internal/domain"
)

// MockSource implements domain.Source with fake data for offline runs.
type MockSource struct{}

func NewMockSource() *MockSource {
	return &MockSource{}
}

func (ms *MockSource) SearchPosts(ctx context.Context, term string, limit int, sort string) ([]domain.Post, error) {
	// Simulate network latency (nice for testing concurrency)
	time.Sleep(200 * time.Millisecond)

	var posts []domain.Post
	for i := 0; i < limit; i++ {
		posts = append(posts, domain.Post{
			ID:    fmt.Sprintf("mock_%d", i),
			Title: fmt.Sprintf("Simulated discussion #%d about %s", i, term),
		})
	}
	return posts, nil
}

func (ms *MockSource) PostComments(ctx context.Context, postID string) ([]domain.Comment, error) {
	time.Sleep(100 * time.Millisecond)

	var comments []domain.Comment
	for i := 0; i < 20; i++ {
		comments = append(comments, domain.Comment{
			ID:      fmt.Sprintf("%s_c%d", postID, i),
			Body:    fmt.Sprintf("Simulated opinion %d with enough words to clear the minimum length filter easily.", i),
			Score:   rand.Intn(500),
			Created: time.Now().UTC(),
		})
	}
	return comments, nil
}
