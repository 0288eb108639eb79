package doctree

import "errors"

var (
	// ErrNotFound signals a missing document or category.
	ErrNotFound = errors.New("not found")
	// ErrReadFailure signals a filesystem error while walking or reading the corpus.
	ErrReadFailure = errors.New("read failure")
	// ErrRenderFailure signals a Markdown conversion error.
	ErrRenderFailure = errors.New("render failure")
	// ErrNetworkFailure signals a failed request from a client to the server.
	ErrNetworkFailure = errors.New("network failure")
)
