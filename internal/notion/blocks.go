package notion

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Block is a Notion API block object. Blocks are plain JSON maps
// because the API surface is wide and we only assemble, never read.
type Block map[string]any

// richTextLimit is Notion's hard cap per rich text item. Longer text
// is split across multiple items.
const richTextLimit = 2000

func splitText(text string) []string {
	if len(text) <= richTextLimit {
		return []string{text}
	}
	var parts []string
	for len(text) > richTextLimit {
		cut := richTextLimit
		// prefer a space so words survive the split
		if idx := strings.LastIndex(text[:richTextLimit], " "); idx > richTextLimit/2 {
			cut = idx
		}
		parts = append(parts, text[:cut])
		text = strings.TrimLeft(text[cut:], " ")
	}
	if text != "" {
		parts = append(parts, text)
	}
	return parts
}

func richText(content string, bold bool) []any {
	items := make([]any, 0, 1)
	for _, part := range splitText(content) {
		items = append(items, map[string]any{
			"type":        "text",
			"text":        map[string]any{"content": part},
			"annotations": map[string]any{"bold": bold},
		})
	}
	return items
}

func headingBlock(text string) Block {
	return Block{
		"object":    "block",
		"type":      "heading_2",
		"heading_2": map[string]any{"rich_text": richText(text, false)},
	}
}

func paragraphBlock(text string) Block {
	return Block{
		"object":    "block",
		"type":      "paragraph",
		"paragraph": map[string]any{"rich_text": richText(text, false)},
	}
}

func bulletedBlock(text, boldPrefix string) Block {
	var rich []any
	if boldPrefix != "" {
		rich = append(richText(boldPrefix, true), richText(text, false)...)
	} else {
		rich = richText(text, false)
	}
	return Block{
		"object":             "block",
		"type":               "bulleted_list_item",
		"bulleted_list_item": map[string]any{"rich_text": rich},
	}
}

func numberedBlock(text string) Block {
	return Block{
		"object":             "block",
		"type":               "numbered_list_item",
		"numbered_list_item": map[string]any{"rich_text": richText(text, false)},
	}
}

func calloutBlock(text, emoji string) Block {
	return Block{
		"object": "block",
		"type":   "callout",
		"callout": map[string]any{
			"rich_text": richText(text, false),
			"icon":      map[string]any{"type": "emoji", "emoji": emoji},
		},
	}
}

func quoteBlock(text string) Block {
	return Block{
		"object": "block",
		"type":   "quote",
		"quote":  map[string]any{"rich_text": richText(text, false)},
	}
}

func dividerBlock() Block {
	return Block{
		"object":  "block",
		"type":    "divider",
		"divider": map[string]any{},
	}
}

func codeBlock(code, language string) Block {
	return Block{
		"object": "block",
		"type":   "code",
		"code": map[string]any{
			"rich_text": richText(code, false),
			"language":  language,
		},
	}
}

func bookmarkBlock(url string) Block {
	return Block{
		"object":   "block",
		"type":     "bookmark",
		"bookmark": map[string]any{"url": url},
	}
}

func toggleBlock(title string, children []Block) Block {
	return Block{
		"object": "block",
		"type":   "toggle",
		"toggle": map[string]any{
			"rich_text": richText(title, false),
			"children":  children,
		},
	}
}

// mermaidLiveURL builds a mermaid.live editor link embedding the
// diagram code, so readers can view the rendered diagram.
func mermaidLiveURL(code string) (string, error) {
	state, err := json.Marshal(map[string]any{
		"code":          code,
		"mermaid":       map[string]any{"theme": "default"},
		"autoSync":      true,
		"updateDiagram": true,
	})
	if err != nil {
		return "", fmt.Errorf("encode mermaid state: %w", err)
	}
	return "https://mermaid.live/edit#base64:" + base64.URLEncoding.EncodeToString(state), nil
}
