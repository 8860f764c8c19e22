// Package render turns a conversation history into text for the browser.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"persona-chat/internal/conversation"
)

const EmptyNotice = "No messages yet. Start the conversation below."

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Markdown formats turns as speaker-labelled paragraphs.
func Markdown(turns []conversation.Turn) string {
	if len(turns) == 0 {
		return EmptyNotice
	}

	var b strings.Builder
	for i, t := range turns {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "**%s:** %s", speaker(t.Role), t.Content)
	}
	return b.String()
}

// HTML renders Markdown(turns). Raw HTML in turn content is not passed
// through.
func HTML(turns []conversation.Turn) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(turns)), &buf); err != nil {
		return "", fmt.Errorf("render transcript: %w", err)
	}
	return buf.String(), nil
}

func speaker(role conversation.Role) string {
	switch role {
	case conversation.RoleUser:
		return "You"
	case conversation.RoleAssistant:
		return "Assistant"
	case "":
		return ""
	default:
		s := string(role)
		return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
	}
}
