package vectorindex

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrNotInitialized means an operation ran before a collection could be resolved.
	ErrNotInitialized = errors.New("vectorindex: collection not initialized")

	// ErrCollectionUnavailable means creation or the follow-up listing never yielded an id.
	ErrCollectionUnavailable = errors.New("vectorindex: collection could not be resolved or created")

	// ErrCollectionNotFound is the classified form of the store reporting that the
	// cached collection id no longer exists. It triggers the one-shot re-resolution.
	ErrCollectionNotFound = errors.New("vectorindex: collection does not exist")

	// ErrQueryFailed is surfaced when a query still fails after re-resolution.
	ErrQueryFailed = errors.New("vectorindex: query failed")
)

// httpError carries a non-2xx response from the store.
type httpError struct {
	StatusCode int
	Body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("vectorindex: store returned %d: %s", e.StatusCode, e.Body)
}

// classifyError maps a raw store response onto the typed taxonomy. The store
// signals a missing collection with a 400/404 whose body says "does not exist";
// there is no structured code on the wire, so the substring match is the only
// available signal. Known fragility: a body wording change breaks self-healing.
func classifyError(statusCode int, body string) error {
	if (statusCode == http.StatusBadRequest || statusCode == http.StatusNotFound) &&
		strings.Contains(strings.ToLower(body), "does not exist") {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, body)
	}
	return &httpError{StatusCode: statusCode, Body: body}
}
