package marking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mind-engage/mindengage-marker/internal/batch"
	"github.com/mind-engage/mindengage-marker/internal/chunker"
	"github.com/mind-engage/mindengage-marker/internal/llm"
	"github.com/mind-engage/mindengage-marker/internal/retry"
	"github.com/mind-engage/mindengage-marker/internal/tokens"
)

const (
	DefaultSingleRequestTokens = 12000
	DefaultMaxOutputTokens     = 1500
	DefaultTemperature         = 0.3
	DefaultInterChunkDelay     = 8 * time.Second

	memoExcerptTokens = 500
)

const systemPrompt = `You are an experienced academic marker. Mark the student's submission fairly and consistently.
For each question or section: state the marks awarded out of the marks available, give one or two sentences of justification, and suggest one concrete improvement.
Use the marking memo when one is provided. Do not invent questions that are not in the submission.`

// RemoteConfig bounds remote marking.
type RemoteConfig struct {
	SingleRequestTokens int           // whole documents up to this size go in one call
	ChunkTokens         int           // per chunk budget for larger documents
	MaxChunks           int           // refuse documents needing more chunks
	MaxOutputTokens     int
	Temperature         float64
	InterChunkDelay     time.Duration
	Policy              retry.Policy
}

func DefaultRemoteConfig() RemoteConfig {
	return RemoteConfig{
		SingleRequestTokens: DefaultSingleRequestTokens,
		ChunkTokens:         batch.DefaultChunkTokens,
		MaxChunks:           chunker.MaxChunks,
		MaxOutputTokens:     DefaultMaxOutputTokens,
		Temperature:         DefaultTemperature,
		InterChunkDelay:     DefaultInterChunkDelay,
		Policy:              retry.DefaultPolicy(),
	}
}

// RemoteReport is the concatenated output of remote marking.
type RemoteReport struct {
	DocumentID      string `json:"document_id"`
	Student         string `json:"student"`
	Assignment      string `json:"assignment"`
	EstimatedTokens int    `json:"estimated_tokens"`
	Chunks          int    `json:"chunks"`
	Failed          []int  `json:"failed,omitempty"`
	Text            string `json:"text"`
}

type RemoteOption func(*RemoteEngine)

func WithRemoteConfig(c RemoteConfig) RemoteOption { return func(e *RemoteEngine) { e.cfg = c } }

func WithScheduler(s *retry.Scheduler) RemoteOption { return func(e *RemoteEngine) { e.sched = s } }

// WithPause replaces the wait between chunks.
func WithPause(fn func(ctx context.Context, d time.Duration) error) RemoteOption {
	return func(e *RemoteEngine) { e.pause = fn }
}

// RemoteEngine marks documents through a Completer, one chunk at a time.
type RemoteEngine struct {
	llm   llm.Completer
	log   *slog.Logger
	cfg   RemoteConfig
	sched *retry.Scheduler
	pause func(ctx context.Context, d time.Duration) error
}

func NewRemoteEngine(c llm.Completer, log *slog.Logger, opts ...RemoteOption) *RemoteEngine {
	e := &RemoteEngine{
		llm:   c,
		log:   log,
		cfg:   DefaultRemoteConfig(),
		pause: retry.Sleep,
	}
	for _, o := range opts {
		o(e)
	}
	if e.sched == nil {
		e.sched = retry.New(retry.WithObserver(func(ev retry.Event) {
			e.log.Warn("Retrying completion",
				"attempt", ev.Attempt+1, "kind", ev.Kind, "delay", ev.Delay, "error", ev.Err)
		}))
	}
	return e
}

// Plan returns the chunks doc would be sent as, or a SizeLimitError.
func (e *RemoteEngine) Plan(doc Document) ([]chunker.Chunk, error) {
	est := tokens.Estimate(doc.Text)
	if est <= e.cfg.SingleRequestTokens {
		return []chunker.Chunk{{Index: 0, Total: 1, Text: doc.Text, EstimatedTokens: est}}, nil
	}
	return e.chunks(doc.Text)
}

func (e *RemoteEngine) chunks(text string) ([]chunker.Chunk, error) {
	cs := chunker.Split(text, e.cfg.ChunkTokens)
	if len(cs) > e.cfg.MaxChunks {
		return nil, &SizeLimitError{Chunks: len(cs), Limit: e.cfg.MaxChunks}
	}
	return cs, nil
}

// Mark sends doc to the completer. Documents within the single request
// budget go in one call whose failure is returned. Larger documents are
// chunked; a chunk that still fails after retries is replaced by a
// placeholder and the remaining chunks continue.
func (e *RemoteEngine) Mark(ctx context.Context, doc Document, memo string) (RemoteReport, error) {
	if err := doc.Validate(); err != nil {
		return RemoteReport{}, err
	}
	rep := RemoteReport{
		DocumentID:      doc.ID,
		Student:         doc.student(),
		Assignment:      doc.assignment(),
		EstimatedTokens: tokens.Estimate(doc.Text),
	}

	if rep.EstimatedTokens <= e.cfg.SingleRequestTokens {
		out, err := e.complete(ctx, doc, memo, chunker.Chunk{Total: 1, Text: doc.Text})
		switch {
		case err == nil:
			rep.Chunks, rep.Text = 1, out
			return rep, nil
		case !errors.Is(err, llm.ErrPayloadTooLarge):
			return RemoteReport{}, fmt.Errorf("mark %s: %w", doc.ID, err)
		}
		e.log.Warn("Single request rejected as too large, chunking", "document", doc.ID, "tokens", rep.EstimatedTokens)
	}

	cs, err := e.chunks(doc.Text)
	if err != nil {
		return RemoteReport{}, err
	}
	rep.Chunks = len(cs)
	parts := make([]string, 0, len(cs))
	for _, ch := range cs {
		if ch.Index > 0 && e.cfg.InterChunkDelay > 0 {
			if err := e.pause(ctx, e.cfg.InterChunkDelay); err != nil {
				return RemoteReport{}, err
			}
		}
		out, err := e.complete(ctx, doc, memo, ch)
		if err != nil {
			if ctx.Err() != nil {
				return RemoteReport{}, ctx.Err()
			}
			e.log.Error("Chunk failed", "document", doc.ID, "chunk", ch.Index+1, "of", ch.Total, "error", err)
			rep.Failed = append(rep.Failed, ch.Index)
			out = unavailable(err)
		}
		parts = append(parts, fmt.Sprintf("## Section %d of %d\n\n%s", ch.Index+1, ch.Total, strings.TrimSpace(out)))
	}
	rep.Text = strings.Join(parts, "\n\n")
	return rep, nil
}

func (e *RemoteEngine) complete(ctx context.Context, doc Document, memo string, ch chunker.Chunk) (string, error) {
	req := llm.Request{
		System:          systemPrompt,
		User:            userPrompt(doc, memo, ch),
		MaxOutputTokens: e.cfg.MaxOutputTokens,
		Temperature:     e.cfg.Temperature,
	}
	out, err := retry.Do(ctx, e.sched, e.cfg.Policy, func(ctx context.Context) (string, error) {
		return e.llm.Complete(ctx, req)
	})
	if err != nil && ctx.Err() == nil && retry.Classify(err) == retry.KindTransient {
		return "", fmt.Errorf("%w: %w", ErrTransient, err)
	}
	return out, err
}

func unavailable(err error) string {
	return fmt.Sprintf("_This section is unavailable: %s. %s_", err, Suggest(err))
}

func userPrompt(doc Document, memo string, ch chunker.Chunk) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Student: %s\nAssignment: %s\n", doc.student(), doc.assignment())
	if ch.Total > 1 {
		fmt.Fprintf(&b, "This is part %d of %d of the submission. Mark only the answers in this part.\n", ch.Index+1, ch.Total)
	}
	if m := strings.TrimSpace(memo); m != "" {
		b.WriteString("\nMarking memo:\n")
		b.WriteString(excerpt(m, memoExcerptTokens))
		b.WriteString("\n")
	}
	b.WriteString("\nSubmission:\n")
	b.WriteString(ch.Text)
	return b.String()
}

func excerpt(s string, maxTokens int) string {
	r := []rune(s)
	if n := tokens.Budget(maxTokens); len(r) > n {
		return string(r[:n]) + " ..."
	}
	return s
}
