package tokens

import (
	"testing"

	"github.com/brightlisting/rewriter/internal/genai"
)

func TestCountText(t *testing.T) {
	c := NewCounter()

	n := c.CountText("This sun-filled three-bedroom pairs refinished oak floors with a renovated kitchen.")
	if n <= 0 {
		t.Fatalf("expected positive count, got %d", n)
	}
	// A real tokenization is denser than one token per character.
	if n >= len("This sun-filled three-bedroom pairs refinished oak floors with a renovated kitchen.") {
		t.Errorf("count %d looks like a per-character fallback", n)
	}
}

func TestCountMessagesIncludesOverhead(t *testing.T) {
	c := NewCounter()

	messages := []genai.Message{
		{Role: genai.RoleSystem, Content: "You are a copywriter."},
		{Role: genai.RoleUser, Content: "Rewrite this listing."},
	}

	total := c.CountMessages(messages)
	sum := c.CountText(genai.RoleSystem+"You are a copywriter.") +
		c.CountText(genai.RoleUser+"Rewrite this listing.")
	if total <= sum {
		t.Errorf("expected per-message overhead: total %d, bare sum %d", total, sum)
	}
}

func TestCountTextEmpty(t *testing.T) {
	c := NewCounter()
	if n := c.CountText(""); n != 0 {
		t.Errorf("expected 0 for empty text, got %d", n)
	}
}
