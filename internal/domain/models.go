package domain

import (
	"context"
	"time"
)

// SearchRequest is the single message a client sends to begin a session.
type SearchRequest struct {
	Action string `json:"action"`
	Term   string `json:"term"`
}

// Post is a search result as returned by the content source.
type Post struct {
	ID    string
	Title string
}

// Comment is a raw comment as returned by the content source.
type Comment struct {
	ID      string
	Body    string
	Score   int
	Created time.Time
}

// CollectedComment is the clean record kept for every comment that passes the filter.
type CollectedComment struct {
	PostTitle    string `json:"post_title"`
	PostID       string `json:"post_id"`
	CommentID    string `json:"comment_id"`
	CommentBody  string `json:"comment_body"`
	CommentScore int    `json:"comment_score"`
	CommentUTC   string `json:"comment_utc_date"`
}

// Source defines the interface for content retrieval
type Source interface {
	SearchPosts(ctx context.Context, term string, limit int, sort string) ([]Post, error)
	PostComments(ctx context.Context, postID string) ([]Comment, error)
}

// Completer defines the interface for streaming model completions.
// The content channel carries text deltas in arrival order and is closed
// when the stream ends; the error channel carries at most one error.
type Completer interface {
	StreamChat(ctx context.Context, system, user string) (<-chan string, <-chan error)
}
