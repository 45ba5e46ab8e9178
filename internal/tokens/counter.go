// Package tokens estimates prompt token counts so the variation prompt
// builder can stay inside the upstream context budget.
package tokens

import (
	"fmt"
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"

	"github.com/brightlisting/rewriter/internal/genai"
)

// Counter estimates token counts using tiktoken's cl100k encoding, which
// covers the chat-completions models this service targets.
type Counter struct {
	mu    sync.Mutex
	codec tokenizer.Codec
}

// NewCounter creates a token counter.
func NewCounter() *Counter {
	return &Counter{}
}

func (c *Counter) getCodec() (tokenizer.Codec, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.codec != nil {
		return c.codec, nil
	}
	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer: %w", err)
	}
	c.codec = codec
	return codec, nil
}

// CountText returns the token count for a single text block. A rough
// 4-chars-per-token estimate is used if the codec cannot load.
func (c *Counter) CountText(text string) int {
	codec, err := c.getCodec()
	if err != nil {
		return len(text) / 4
	}
	ids, _, err := codec.Encode(text)
	if err != nil {
		return len(text) / 4
	}
	return len(ids)
}

// CountMessages returns the token estimate for a full instruction list,
// including the small per-message framing overhead the chat format adds.
func (c *Counter) CountMessages(messages []genai.Message) int {
	const perMessageOverhead = 4

	var b strings.Builder
	total := 0
	for _, m := range messages {
		b.Reset()
		b.WriteString(m.Role)
		b.WriteString(m.Content)
		total += c.CountText(b.String()) + perMessageOverhead
	}
	return total
}
