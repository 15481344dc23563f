package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/taratriia/market-analyzer/internal/domain"
	"golang.org/x/time/rate"
)

// PublicSource uses Reddit's public JSON endpoints. No credentials needed,
// but the rate limit is stricter than the authenticated API's.
type PublicSource struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	scope      string
	baseURL    string
}

type publicListing struct {
	Data struct {
		Children []publicThing `json:"children"`
	} `json:"data"`
}

type publicThing struct {
	Kind string          `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type publicPost struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type publicComment struct {
	ID         string          `json:"id"`
	Body       string          `json:"body"`
	Score      int             `json:"score"`
	CreatedUTC float64         `json:"created_utc"`
	Replies    json.RawMessage `json:"replies"`
}

func NewPublicSource(userAgent, scope string) (*PublicSource, error) {
	return &PublicSource{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		// Public JSON Limit: 1 req / 2 seconds (Stricter)
		limiter:   rate.NewLimiter(rate.Every(2*time.Second), 1),
		userAgent: userAgent,
		scope:     scope,
		baseURL:   "https://www.reddit.com",
	}, nil
}

func (ps *PublicSource) SearchPosts(ctx context.Context, term string, limit int, sort string) ([]domain.Post, error) {
	reqURL := fmt.Sprintf("%s/r/%s/search.json?q=%s&sort=%s&limit=%d&restrict_sr=1",
		ps.baseURL, ps.scope, url.QueryEscape(term), url.QueryEscape(sort), limit)

	var listing publicListing
	if err := ps.getJSON(ctx, reqURL, &listing); err != nil {
		return nil, err
	}

	var posts []domain.Post
	for _, child := range listing.Data.Children {
		if child.Kind != "t3" {
			continue
		}
		var p publicPost
		if err := json.Unmarshal(child.Data, &p); err != nil {
			continue
		}
		posts = append(posts, domain.Post{ID: p.ID, Title: p.Title})
	}
	return posts, nil
}

func (ps *PublicSource) PostComments(ctx context.Context, postID string) ([]domain.Comment, error) {
	reqURL := fmt.Sprintf("%s/comments/%s.json", ps.baseURL, postID)

	// The endpoint returns a two-element array: the post listing, then the
	// comment tree.
	var listings []publicListing
	if err := ps.getJSON(ctx, reqURL, &listings); err != nil {
		return nil, err
	}
	if len(listings) < 2 {
		return nil, fmt.Errorf("unexpected comments payload for post %s", postID)
	}

	var out []domain.Comment
	flattenPublic(listings[1].Data.Children, &out)
	return out, nil
}

// flattenPublic walks the comment tree in returned order. Anything that is
// not kind "t1" (e.g. "more" stubs) is skipped without expansion.
func flattenPublic(children []publicThing, out *[]domain.Comment) {
	for _, child := range children {
		if child.Kind != "t1" {
			continue
		}
		var c publicComment
		if err := json.Unmarshal(child.Data, &c); err != nil {
			continue
		}
		*out = append(*out, domain.Comment{
			ID:      c.ID,
			Body:    c.Body,
			Score:   c.Score,
			Created: time.Unix(int64(c.CreatedUTC), 0).UTC(),
		})
		// "replies" is an empty string when there are none, a listing otherwise.
		if len(c.Replies) > 0 && bytes.HasPrefix(bytes.TrimSpace(c.Replies), []byte("{")) {
			var nested publicListing
			if err := json.Unmarshal(c.Replies, &nested); err == nil {
				flattenPublic(nested.Data.Children, out)
			}
		}
	}
}

func (ps *PublicSource) getJSON(ctx context.Context, reqURL string, v any) error {
	if err := ps.limiter.Wait(ctx); err != nil {
		return err
	}

	req, _ := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	req.Header.Set("User-Agent", ps.userAgent)

	resp, err := ps.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fmt.Errorf("reddit public access status: %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
