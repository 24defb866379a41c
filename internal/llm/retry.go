package llm

import (
	"context"
	"errors"
	"time"

	"blogforge/internal/logger"
)

// Policy bounds every model call: a per-attempt timeout plus a small number
// of retries with linear backoff for transient generation failures.
type Policy struct {
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// DefaultPolicy is used when no pipeline configuration is available.
var DefaultPolicy = Policy{Timeout: 60 * time.Second, MaxRetries: 2, RetryDelay: 2 * time.Second}

type policyClient struct {
	next   Client
	policy Policy
	sleep  func(ctx context.Context, d time.Duration) error
}

// WithPolicy wraps next with timeout and retry handling. Schema validation
// failures are returned immediately.
func WithPolicy(next Client, policy Policy) Client {
	return &policyClient{next: next, policy: policy, sleep: sleepContext}
}

func (p *policyClient) Complete(ctx context.Context, tmpl PromptTemplate, vars map[string]string) (string, error) {
	var text string
	err := p.do(ctx, tmpl.Name, func(ctx context.Context) error {
		var err error
		text, err = p.next.Complete(ctx, tmpl, vars)
		return err
	})
	return text, err
}

func (p *policyClient) CompleteStructured(ctx context.Context, tmpl PromptTemplate, vars map[string]string, shape *Shape, out any) error {
	return p.do(ctx, tmpl.Name, func(ctx context.Context) error {
		return p.next.CompleteStructured(ctx, tmpl, vars, shape, out)
	})
}

func (p *policyClient) do(ctx context.Context, name string, call func(context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= p.policy.MaxRetries; attempt++ {
		if attempt > 0 {
			wait := p.policy.RetryDelay * time.Duration(attempt)
			logger.Warn("Retrying LLM call", "template", name, "attempt", attempt+1, "wait", wait.String(), "error", lastErr.Error())
			if err := p.sleep(ctx, wait); err != nil {
				return lastErr
			}
		}

		lastErr = p.attempt(ctx, name, call)
		if lastErr == nil {
			return nil
		}
		if !IsTransient(lastErr) || ctx.Err() != nil {
			return lastErr
		}
	}
	return lastErr
}

func (p *policyClient) attempt(ctx context.Context, name string, call func(context.Context) error) error {
	callCtx := ctx
	if p.policy.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.policy.Timeout)
		defer cancel()
	}

	err := call(callCtx)
	if err == nil {
		return nil
	}
	// A per-attempt deadline that the provider surfaced as something other
	// than a GenerationError still counts as a generation failure.
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil && !IsGeneration(err) {
		return &GenerationError{Template: name, Provider: "policy", Transient: true, Err: err}
	}
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
