package api

import "fmt"

// TransportError covers everything between us and the backend: connection
// refused, timeout, or a non-2xx status. The caller treats all of these
// uniformly as "backend not reachable".
type TransportError struct {
	Op     string // "get stats" or "submit query"
	Status int    // HTTP status, 0 when the request never completed
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: backend returned status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// MalformedResponseError means the backend answered 2xx but the body was
// not parseable JSON. Partially populated bodies are not malformed; those
// are normalized field by field instead.
type MalformedResponseError struct {
	Op  string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
