// Package genclient wraps a text-generation backend with retry, backoff,
// error classification, and deterministic fallback text. Callers never see
// transport errors: a call either succeeds or yields a fallback string.
package genclient

import (
	"context"
	"errors"
	"log"
	"net"
	"strings"
	"time"
)

type FailureClass int

const (
	FailureNone FailureClass = iota
	FailureRateLimited
	FailureTransientConnectivity
	FailureContentPolicyBlocked
	FailureMalformedOutput
	FailureOther
)

func (c FailureClass) String() string {
	switch c {
	case FailureNone:
		return "none"
	case FailureRateLimited:
		return "rate_limited"
	case FailureTransientConnectivity:
		return "transient_connectivity"
	case FailureContentPolicyBlocked:
		return "content_policy_blocked"
	case FailureMalformedOutput:
		return "malformed_output"
	default:
		return "other"
	}
}

// Fallback strings are part of the observable output contract and must stay
// byte-stable per failure class.
const (
	FallbackRateLimited   = "Unable to generate report due to rate limiting. Please try again later."
	FallbackTransient     = "Unable to generate report after multiple attempts. Please try again later."
	FallbackContentPolicy = "No significant abnormality detected based on the provided findings."
	FallbackGeneric       = "Unable to process findings. Please review input data."
)

// ErrMalformedOutput marks a backend response that arrived but carried no
// usable text. Backends return it wrapped so Classify can pick it out.
var ErrMalformedOutput = errors.New("malformed backend output")

type CallStatus string

const (
	StatusSuccess  CallStatus = "SUCCESS"
	StatusFallback CallStatus = "FALLBACK"
)

type CallResult struct {
	Text     string
	Status   CallStatus
	Attempts int
	Class    FailureClass
}

// Backend is the narrow generation contract: one system-instructed,
// user-prompted completion. Implementations must be safe for concurrent use.
type Backend interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	CallTimeout  time.Duration // 0 disables the per-attempt deadline
}

func DefaultConfig() Config {
	return Config{
		MaxAttempts:  5,
		InitialDelay: 1 * time.Second,
		CallTimeout:  2 * time.Minute,
	}
}

// Client is read-only after construction; concurrent Generate calls share
// no mutable state.
type Client struct {
	backend Backend
	cfg     Config
	sleep   func(ctx context.Context, d time.Duration) error
}

func New(backend Backend, cfg Config) *Client {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = DefaultConfig().InitialDelay
	}
	return &Client{backend: backend, cfg: cfg, sleep: sleepCtx}
}

// Generate runs one reliable generation call. It retries rate-limit and
// transient-connectivity failures with exponential backoff
// (initial * 2^attempt) and degrades to a class-specific fallback string
// instead of returning an error.
func (c *Client) Generate(ctx context.Context, instructions, content string) CallResult {
	var class FailureClass
	attempts := 0
	for attempt := 0; attempt < c.cfg.MaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return CallResult{Text: FallbackGeneric, Status: StatusFallback, Attempts: attempts, Class: FailureOther}
		}
		attempts = attempt + 1

		callCtx := ctx
		cancel := func() {}
		if c.cfg.CallTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, c.cfg.CallTimeout)
		}
		text, err := c.backend.Complete(callCtx, instructions, content)
		cancel()
		if err == nil {
			return CallResult{Text: text, Status: StatusSuccess, Attempts: attempts, Class: FailureNone}
		}

		class = Classify(err)
		log.Printf("radreport llm_attempt_error attempt=%d class=%s err=%q", attempts, class, err.Error())
		switch class {
		case FailureContentPolicyBlocked:
			return CallResult{Text: FallbackContentPolicy, Status: StatusFallback, Attempts: attempts, Class: class}
		case FailureRateLimited, FailureTransientConnectivity:
			if attempt < c.cfg.MaxAttempts-1 {
				delay := c.cfg.InitialDelay << uint(attempt)
				if sleepErr := c.sleep(ctx, delay); sleepErr != nil {
					return CallResult{Text: fallbackFor(class), Status: StatusFallback, Attempts: attempts, Class: class}
				}
				continue
			}
			return CallResult{Text: fallbackFor(class), Status: StatusFallback, Attempts: attempts, Class: class}
		default:
			return CallResult{Text: FallbackGeneric, Status: StatusFallback, Attempts: attempts, Class: class}
		}
	}
	return CallResult{Text: fallbackFor(class), Status: StatusFallback, Attempts: attempts, Class: class}
}

func fallbackFor(class FailureClass) string {
	switch class {
	case FailureRateLimited:
		return FallbackRateLimited
	case FailureTransientConnectivity:
		return FallbackTransient
	case FailureContentPolicyBlocked:
		return FallbackContentPolicy
	default:
		return FallbackGeneric
	}
}

// Classify maps a backend error onto the retry taxonomy. Matching is
// string-based because SDK and transport errors surface status detail only
// in the message.
func Classify(err error) FailureClass {
	if err == nil {
		return FailureNone
	}
	if errors.Is(err, ErrMalformedOutput) {
		return FailureMalformedOutput
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "finish_reason") || strings.Contains(msg, "content policy") ||
		strings.Contains(msg, "blocked by safety") || strings.Contains(msg, "refusal") {
		return FailureContentPolicyBlocked
	}
	if strings.Contains(msg, "429") || strings.Contains(msg, "quota") ||
		strings.Contains(msg, "rate limit") || strings.Contains(msg, "resource exhausted") {
		return FailureRateLimited
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return FailureTransientConnectivity
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return FailureTransientConnectivity
	}
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "connection") ||
		strings.Contains(msg, "unavailable") || strings.Contains(msg, "overloaded") ||
		strings.Contains(msg, "status 5") || strings.Contains(msg, "status code: 5") {
		return FailureTransientConnectivity
	}
	return FailureOther
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
