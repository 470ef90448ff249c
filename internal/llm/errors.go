package llm

import "fmt"

// TimeoutError covers both the gateway's own deadline and an external abort;
// callers cannot tell the two apart and should not need to.
type TimeoutError struct {
	Provider Provider
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s request timed out", e.Provider)
}

// ProviderError is a non-2xx reply from the upstream model API, carrying the
// message from its error envelope when one was present.
type ProviderError struct {
	Provider   Provider
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s error (HTTP %d): %s", e.Provider, e.StatusCode, e.Message)
}
