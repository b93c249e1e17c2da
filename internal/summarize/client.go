package summarize

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/howinator/git-hud/internal/gitx"
)

// Typed summarization failures. Every one of these degrades a single file's
// annotation; ErrAuth additionally short-circuits the rest of the run.
var (
	ErrNoAPIKey          = errors.New("no API key configured")
	ErrAuth              = errors.New("authentication failed")
	ErrRateLimited       = errors.New("rate limited")
	ErrMalformedResponse = errors.New("malformed response")
	ErrEmptyDiff         = errors.New("empty diff")
)

const summaryInstruction = "You summarize code diffs for a git status display. " +
	"Reply with one short sentence describing what changed in the file. " +
	"No preamble, no markdown, no trailing period commentary."

const truncatedNote = "\n\n[diff truncated to fit the request size bound]"

// Summarizer turns one diff payload into a short description.
type Summarizer interface {
	// Configured reports whether the whole-run credential precondition holds.
	Configured() bool
	// Summarize sends one diff and returns a single-sentence summary.
	Summarize(ctx context.Context, p gitx.DiffPayload) (string, error)
}

// Client calls the Anthropic Messages API. Requests are independent; the only
// state shared between calls is the credential and the auth-failure latch.
type Client struct {
	api        anthropic.Client
	model      anthropic.Model
	timeout    time.Duration
	maxTokens  int64
	hasKey     bool
	authFailed atomic.Bool
}

// NewClient builds a client for the given credential and model. Extra request
// options (base URL overrides in tests) are passed through to the SDK.
func NewClient(apiKey, model string, timeout time.Duration, opts ...option.RequestOption) *Client {
	all := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}, opts...)
	return &Client{
		api:       anthropic.NewClient(all...),
		model:     anthropic.Model(model),
		timeout:   timeout,
		maxTokens: 120,
		hasKey:    apiKey != "",
	}
}

func (c *Client) Configured() bool { return c.hasKey }

func (c *Client) Summarize(ctx context.Context, p gitx.DiffPayload) (string, error) {
	if !c.hasKey {
		return "", ErrNoAPIKey
	}
	if c.authFailed.Load() {
		return "", ErrAuth
	}
	if p.Binary() || p.Failed() || strings.TrimSpace(p.Text) == "" {
		return "", ErrEmptyDiff
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	input := p.Text
	if p.Truncated {
		input += truncatedNote
	}

	resp, err := c.api.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    []anthropic.TextBlockParam{{Text: summaryInstruction}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(input)),
		},
	})
	if err != nil {
		return "", c.classify(err)
	}

	return reduceResponse(resp)
}

// classify maps SDK errors onto the typed failure set. A credential rejection
// latches so the remaining in-flight files fail fast instead of each paying a
// round trip.
func (c *Client) classify(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		switch apierr.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			c.authFailed.Store(true)
			return fmt.Errorf("%w: HTTP %d", ErrAuth, apierr.StatusCode)
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: HTTP %d", ErrRateLimited, apierr.StatusCode)
		}
		return fmt.Errorf("summarize request: %w", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("summarize request timed out: %w", err)
	}
	return fmt.Errorf("summarize request: %w", err)
}

// reduceResponse flattens the response content to one trimmed line. Anything
// that does not contain usable text is a malformed response, not a panic.
func reduceResponse(resp *anthropic.Message) (string, error) {
	if resp == nil {
		return "", ErrMalformedResponse
	}
	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrMalformedResponse
	}
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = strings.TrimSpace(text[:i])
	}
	return text, nil
}
