package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-chat/internal/conversation"
)

func turns(pairs ...string) []conversation.Turn {
	var out []conversation.Turn
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, conversation.Turn{
			Role:      conversation.Role(pairs[i]),
			Content:   pairs[i+1],
			Timestamp: time.Now(),
		})
	}
	return out
}

func TestMarkdown(t *testing.T) {
	assert.Equal(t, EmptyNotice, Markdown(nil))

	got := Markdown(turns("user", "Hello", "assistant", "Hi there", "system", "note"))
	assert.Equal(t, "**You:** Hello\n\n**Assistant:** Hi there\n\n**System:** note", got)
}

func TestHTML(t *testing.T) {
	out, err := HTML(turns("user", "Hello", "assistant", "Use `go test`"))
	require.NoError(t, err)
	assert.Contains(t, out, "<strong>You:</strong> Hello")
	assert.Contains(t, out, "<code>go test</code>")

	out, err = HTML(turns("user", "<script>alert(1)</script>"))
	require.NoError(t, err)
	assert.NotContains(t, out, "<script>")
}
