package chunker

import "github.com/pkoukk/tiktoken-go"

// NewTiktokenCounter returns a TokenCounter backed by the tiktoken encoding
// for the given model. Loading an encoding may download its vocabulary on
// first use, so this belongs in process wiring rather than hot paths.
func NewTiktokenCounter(model string) (TokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		// Unknown models fall back to the encoding used by recent
		// OpenAI-compatible embedders.
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, err
		}
	}
	return func(text string) int {
		return len(enc.Encode(text, nil, nil))
	}, nil
}
