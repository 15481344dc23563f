package config

import (
	"os"
	"strconv"
)

// Config holds every process-fixed setting. Loaded once in main; sessions
// never renegotiate any of it.
type Config struct {
	// Reddit credentials and scope
	RedditClientID     string
	RedditClientSecret string
	RedditUsername     string
	RedditPassword     string
	RedditUserAgent    string
	SubredditScope     string
	SearchLimitPosts   int
	SortPostsBy        string

	// Collection limits and filters
	TotalCommentsTarget int
	MaxCommentsPerPost  int
	MinCommentWords     int
	MinCommentScore     int

	// AI summarization
	OpenRouterAPIKey string
	AIModel          string
	MaxInputChars    int
	Temperature      float64
	MaxTokens        int

	// Hosting
	Port          string
	CollectorMode string
}

// Load reads the configuration from the environment, falling back to the
// service defaults for anything unset.
func Load() Config {
	return Config{
		RedditClientID:     os.Getenv("REDDIT_CLIENT_ID"),
		RedditClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
		RedditUsername:     os.Getenv("REDDIT_USERNAME"),
		RedditPassword:     os.Getenv("REDDIT_PASSWORD"),
		RedditUserAgent:    getEnv("REDDIT_USER_AGENT", "taratriia_api v1.0"),
		SubredditScope:     getEnv("SUBREDDIT_SCOPE", "all"),
		SearchLimitPosts:   getIntEnv("SEARCH_LIMIT_POSTS", 25),
		SortPostsBy:        getEnv("SORT_POSTS_BY", "comments"),

		TotalCommentsTarget: getIntEnv("TOTAL_COMMENTS_TARGET", 100),
		MaxCommentsPerPost:  getIntEnv("MAX_COMMENTS_PER_POST", 10),
		MinCommentWords:     getIntEnv("MIN_COMMENT_WORDS", 10),
		MinCommentScore:     getIntEnv("MIN_COMMENT_SCORE", 1),

		OpenRouterAPIKey: os.Getenv("OPENROUTER_API_KEY"),
		AIModel:          getEnv("AI_MODEL_NAME", "google/gemini-flash-1.5"),
		MaxInputChars:    getIntEnv("MAX_INPUT_CHARS_AI", 15000),
		Temperature:      getFloatEnv("AI_TEMPERATURE", 0.5),
		MaxTokens:        getIntEnv("AI_MAX_TOKENS", 1024),

		Port:          getEnv("PORT", "8080"),
		CollectorMode: getEnv("COLLECTOR_MODE", "api"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getIntEnv(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getFloatEnv(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
