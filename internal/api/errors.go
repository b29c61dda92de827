package api

import "fmt"

// RemoteError is a failed backend call: transport failure, rejection, or
// a non-2xx response. The transaction processor treats every RemoteError
// as retryable.
type RemoteError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *RemoteError) Error() string {
	if e == nil {
		return ""
	}
	if e.Code != "" && e.Message != "" {
		return fmt.Sprintf("remote: %s: %s", e.Code, e.Message)
	}
	if e.Message != "" {
		return fmt.Sprintf("remote: %s", e.Message)
	}
	if e.Status > 0 {
		return fmt.Sprintf("remote: status %d", e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("remote: %v", e.Err)
	}
	return "remote: call failed"
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}
