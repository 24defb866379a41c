package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// GenerationError reports that the model call itself failed: network, auth,
// rate limit, timeout, or an unusable (empty) response.
type GenerationError struct {
	Template  string
	Provider  string
	Transient bool // rate limits, 5xx and timeouts may succeed on retry
	Err       error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s generation failed for template %q: %v", e.Provider, e.Template, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// SchemaValidationError reports that the model responded but the response
// could not be coerced into the declared output shape.
type SchemaValidationError struct {
	Template string
	Problems []string
	Raw      string // truncated raw response, for logs only
}

func (e *SchemaValidationError) Error() string {
	return fmt.Sprintf("response for template %q does not match output shape: %s", e.Template, strings.Join(e.Problems, "; "))
}

// IsGeneration reports whether err is or wraps a *GenerationError.
func IsGeneration(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge)
}

// IsSchemaValidation reports whether err is or wraps a *SchemaValidationError.
func IsSchemaValidation(err error) bool {
	var se *SchemaValidationError
	return errors.As(err, &se)
}

// IsTransient reports whether err is a GenerationError worth retrying.
func IsTransient(err error) bool {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Transient
	}
	return false
}

// classifyTransient decides whether a raw provider error is worth retrying.
// Status codes win when known; otherwise fall back to message inspection.
func classifyTransient(err error, status int) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if status != 0 {
		return status == 408 || status == 429 || status >= 500
	}
	return isRateLimitError(err) || isServerError(err)
}

func isRateLimitError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "429") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "too many requests")
}

func isServerError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "500") ||
		strings.Contains(msg, "502") ||
		strings.Contains(msg, "503") ||
		strings.Contains(msg, "504") ||
		strings.Contains(msg, "unavailable") ||
		strings.Contains(msg, "connection reset")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
