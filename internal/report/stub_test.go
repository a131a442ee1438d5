package report

import (
	"context"
	"sync"

	"github.com/osgrady/radreport/internal/genclient"
)

type genCall struct {
	instructions string
	content      string
}

// stubGen records every call and answers via fn; without fn it echoes a
// fixed success. Safe for the concurrent dispatch paths under test.
type stubGen struct {
	mu    sync.Mutex
	calls []genCall
	fn    func(instructions, content string) genclient.CallResult
}

func (s *stubGen) Generate(ctx context.Context, instructions, content string) genclient.CallResult {
	s.mu.Lock()
	s.calls = append(s.calls, genCall{instructions: instructions, content: content})
	s.mu.Unlock()
	if s.fn != nil {
		return s.fn(instructions, content)
	}
	return ok("ok")
}

func (s *stubGen) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *stubGen) recorded() []genCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]genCall, len(s.calls))
	copy(out, s.calls)
	return out
}

func ok(text string) genclient.CallResult {
	return genclient.CallResult{Text: text, Status: genclient.StatusSuccess, Attempts: 1}
}

func fallback(text string, class genclient.FailureClass, attempts int) genclient.CallResult {
	return genclient.CallResult{Text: text, Status: genclient.StatusFallback, Attempts: attempts, Class: class}
}
