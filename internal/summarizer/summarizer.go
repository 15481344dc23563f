package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/taratriia/market-analyzer/internal/domain"
)

// truncationMarker is appended whenever the corpus is cut at the character
// budget. The cut is a hard one; it may split a word.
const truncationMarker = "... [TRUNCATED]"

const systemPrompt = "You are an expert market analysis assistant. Analyze the following Reddit comments about a specific topic. Your goal is to extract information valuable for understanding the audience."

// Summarizer streams a model-generated analysis of collected comments.
// Safe to share across sessions; per-call state only.
type Summarizer struct {
	completer     domain.Completer
	model         string
	maxInputChars int
	logger        *slog.Logger

	// pause after each relayed chunk so the outbound channel isn't saturated
	chunkPause time.Duration
}

func New(completer domain.Completer, model string, maxInputChars int, logger *slog.Logger) *Summarizer {
	return &Summarizer{
		completer:     completer,
		model:         model,
		maxInputChars: maxInputChars,
		logger:        logger,
		chunkPause:    10 * time.Millisecond,
	}
}

// Summarize builds a bounded prompt from the collected comments and relays
// the model's output chunk by chunk. An empty collection short-circuits
// without ever calling the model. A mid-stream model failure is returned;
// chunks already emitted stand.
func (s *Summarizer) Summarize(ctx context.Context, comments []domain.CollectedComment, term string, emit domain.Emitter) error {
	if len(comments) == 0 {
		return emit(domain.StatusEvent("No valid comments found to analyze."))
	}

	corpus := buildCorpus(comments)
	if len(corpus) > s.maxInputChars {
		s.logger.Warn("truncating corpus for model input", "length", len(corpus), "limit", s.maxInputChars)
		corpus = corpus[:s.maxInputChars] + truncationMarker
	}

	if err := emit(domain.StatusEvent(fmt.Sprintf("Calling AI (%s)...", s.model))); err != nil {
		return err
	}

	content, errs := s.completer.StreamChat(ctx, systemPrompt, userPrompt(term, corpus))
	for chunk := range content {
		if err := emit(domain.ChunkEvent(chunk)); err != nil {
			return err
		}
		time.Sleep(s.chunkPause)
	}
	if err := <-errs; err != nil {
		return err
	}

	return emit(domain.StatusEvent("AI analysis complete."))
}

func buildCorpus(comments []domain.CollectedComment) string {
	bodies := make([]string, 0, len(comments))
	for _, c := range comments {
		bodies = append(bodies, c.CommentBody)
	}
	return strings.Join(bodies, "\n\n")
}

func userPrompt(term, corpus string) string {
	return fmt.Sprintf("Here is a collection of Reddit comments about the topic '%s':\n\n---\n%s\n---\n\n"+
		"Please perform a concise analysis and identify:\n"+
		"1. **Key Terms and Recurring Themes:** words or concepts that appear frequently.\n"+
		"2. **Common Situations, Problems or Needs:** what circumstances or difficulties do users mention around the topic?\n"+
		"3. **Overall Sentiment:** are there clear trends of positive, negative or neutral opinions? Mention examples where possible.\n"+
		"4. **Possible Insights:** any interesting observation or conclusion about this audience or market.\n\n"+
		"Format your answer using Markdown for clarity.", term, corpus)
}
