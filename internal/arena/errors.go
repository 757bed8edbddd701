package arena

import "fmt"

// The error kinds the gateway can surface are a closed set; the HTTP layer
// maps each kind to a status code and every handler logs the kind before
// returning. No partial state accompanies any of them.

// InvalidRequestError reports a missing or malformed request field.
type InvalidRequestError struct {
	Field  string
	Reason string
}

func (e *InvalidRequestError) Error() string {
	if e.Reason != "" {
		return e.Reason
	}
	return fmt.Sprintf("%s is invalid", e.Field)
}

// PromptRejectedError is a moderation refusal with its rationale.
type PromptRejectedError struct {
	Rationale string
	Message   string
}

func (e *PromptRejectedError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("prompt rejected (%s): %s", e.Rationale, e.Message)
	}
	return fmt.Sprintf("prompt rejected: %s", e.Rationale)
}

// RateLimitedError is reserved for a future external limiter.
type RateLimitedError struct{}

func (e *RateLimitedError) Error() string { return "rate limited" }

// WorkerUnavailableError means a system failed its health check.
type WorkerUnavailableError struct {
	System SystemKey
	Err    error
}

func (e *WorkerUnavailableError) Error() string {
	return fmt.Sprintf("system %s health check failed: %v", e.System, e.Err)
}

func (e *WorkerUnavailableError) Unwrap() error { return e.Err }

// WorkerFailedError means all generate attempts against a system failed.
type WorkerFailedError struct {
	System   SystemKey
	Attempts int
	LastErr  error
}

func (e *WorkerFailedError) Error() string {
	return fmt.Sprintf("system %s generation failed after %d attempts, last error: %v",
		e.System, e.Attempts, e.LastErr)
}

func (e *WorkerFailedError) Unwrap() error { return e.LastErr }

// NoEligiblePairError means the lyric constraints left no legal pair.
type NoEligiblePairError struct {
	Instrumental bool
}

func (e *NoEligiblePairError) Error() string {
	mode := "vocal"
	if e.Instrumental {
		mode = "instrumental"
	}
	return fmt.Sprintf("no system pairs eligible for %s prompt", mode)
}

// ChatError is an upstream LLM failure, including unusable output.
type ChatError struct {
	Reason string
	Err    error
}

func (e *ChatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("chat backend: %s: %v", e.Reason, e.Err)
	}
	return "chat backend: " + e.Reason
}

func (e *ChatError) Unwrap() error { return e.Err }

// StorageError is an object-store put/get failure.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NotFoundError means a battle uuid resolved neither in cache nor store.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// InjectedFailureError is the chaos-testing flakiness knob firing.
type InjectedFailureError struct{}

func (e *InjectedFailureError) Error() string { return "injected failure" }
