package ai

// Summary is the result of summarizing a document's text.
type Summary struct {
	// Content is the generated summary text.
	Content string

	// Tags are short topic labels describing the document.
	Tags []string
}
