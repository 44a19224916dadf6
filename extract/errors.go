package extract

import "errors"

var (
	// ErrEmptyResult indicates extraction produced no usable text.
	ErrEmptyResult = errors.New("extraction produced no text")

	// ErrUnsupportedContentType indicates the fetched resource has a
	// content type no extractor can handle.
	ErrUnsupportedContentType = errors.New("unsupported content type")

	// ErrFetchFailed indicates the remote source could not be retrieved.
	ErrFetchFailed = errors.New("failed to fetch source")
)
