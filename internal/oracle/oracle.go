// Package oracle asks a chat model whether a candidate attribute has the
// same meaning as one of a set of phrases, and whether it is subjective.
package oracle

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/zhang-3000/meituan/internal/llm"
	"github.com/zhang-3000/meituan/internal/observability"
	"github.com/zhang-3000/meituan/internal/retry"
)

// ErrorSentinel is stored in place of a reply when the oracle could not
// be reached.
const ErrorSentinel = "error"

// DefaultInterval is the minimum spacing between two model calls.
const DefaultInterval = time.Second

// Status tells whether a consultation produced a reply.
type Status int

const (
	StatusAnswered Status = iota + 1
	StatusUnreachable
)

func (s Status) String() string {
	switch s {
	case StatusAnswered:
		return "answered"
	case StatusUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Verdict is the result of one consultation.
type Verdict struct {
	Status   Status
	Raw      string
	Attempts int
	// Err is the last failure when Status is StatusUnreachable.
	Err error
}

// Answered reports whether the model replied.
func (v Verdict) Answered() bool {
	return v.Status == StatusAnswered
}

// Response is the value written to the consultation log.
func (v Verdict) Response() string {
	if !v.Answered() {
		return ErrorSentinel
	}
	return v.Raw
}

// Judgment decodes the reply. An unreachable verdict has the zero
// Judgment.
func (v Verdict) Judgment() Judgment {
	if !v.Answered() {
		return Judgment{}
	}
	return ParseJudgment(v.Raw)
}

// FromResponse rebuilds a verdict from a logged response.
func FromResponse(response string) Verdict {
	if response == ErrorSentinel {
		return Verdict{Status: StatusUnreachable}
	}
	return Verdict{Status: StatusAnswered, Raw: response}
}

// Consultant sends judge prompts through a Completer, spacing calls with a
// shared limiter and retrying failures per its policy.
type Consultant struct {
	completer llm.Completer
	prompt    *Prompt
	limiter   *rate.Limiter
	policy    retry.Policy
	logger    *zerolog.Logger
	metrics   *observability.Metrics
	calls     int
}

// Option configures a Consultant.
type Option func(*Consultant)

// WithInterval sets the minimum spacing between model calls. Zero or
// negative disables spacing.
func WithInterval(d time.Duration) Option {
	return func(c *Consultant) {
		if d <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithPolicy replaces the retry policy. A nil IsThrottled is filled with
// llm.IsRateLimited.
func WithPolicy(p retry.Policy) Option {
	return func(c *Consultant) {
		if p.IsThrottled == nil {
			p.IsThrottled = llm.IsRateLimited
		}
		c.policy = p
	}
}

// WithPrompt replaces the embedded judge prompt.
func WithPrompt(p *Prompt) Option {
	return func(c *Consultant) {
		if p != nil {
			c.prompt = p
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Consultant) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records consultations into m.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Consultant) {
		c.metrics = m
	}
}

// New creates a Consultant with a one second interval and the default
// retry policy.
func New(completer llm.Completer, opts ...Option) *Consultant {
	nop := zerolog.Nop()
	policy := retry.DefaultPolicy()
	policy.IsThrottled = llm.IsRateLimited

	c := &Consultant{
		completer: completer,
		prompt:    DefaultPrompt(),
		limiter:   rate.NewLimiter(rate.Every(DefaultInterval), 1),
		policy:    policy,
		logger:    &nop,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Calls returns the number of consultations made so far.
func (c *Consultant) Calls() int {
	return c.calls
}

// Consult asks whether candidate matches any phrase in comparison. It
// never returns an error: failures end in an unreachable verdict.
func (c *Consultant) Consult(ctx context.Context, candidate string, comparison []string) Verdict {
	c.calls++
	start := time.Now()

	prompt, err := c.prompt.Render(candidate, comparison)
	if err != nil {
		c.logger.Error().Err(err).Str("candidate", candidate).Msg("Failed to render judge prompt")
		return c.finish(Verdict{Status: StatusUnreachable, Err: err}, start)
	}

	res := retry.Do(ctx, c.policy, func(ctx context.Context) (string, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", retry.Permanent(err)
		}
		reply, err := c.completer.Complete(ctx, prompt)
		if err != nil {
			return "", err
		}
		if strings.TrimSpace(reply) == "" {
			return "", llm.ErrEmptyResponse
		}
		return reply, nil
	}, func(attempt int, err error, wait time.Duration) {
		c.logger.Warn().
			Err(err).
			Str("candidate", candidate).
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("Oracle call failed, retrying")
	})

	if !res.Ok() {
		c.logger.Error().
			Err(res.Err).
			Str("candidate", candidate).
			Int("attempts", res.Attempts).
			Str("outcome", res.Outcome.String()).
			Msg("Oracle unreachable")
		return c.finish(Verdict{Status: StatusUnreachable, Attempts: res.Attempts, Err: res.Err}, start)
	}

	c.logger.Debug().
		Str("candidate", candidate).
		Int("attempts", res.Attempts).
		Str("reply", res.Value).
		Msg("Oracle answered")

	return c.finish(Verdict{Status: StatusAnswered, Raw: res.Value, Attempts: res.Attempts}, start)
}

func (c *Consultant) finish(v Verdict, start time.Time) Verdict {
	c.metrics.ObserveConsultation(v.Status.String(), v.Attempts, time.Since(start).Seconds())
	return v
}
