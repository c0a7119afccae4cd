package notion

import (
	"fmt"
	"strings"
)

// headerBlocks is the video info callout plus embedded link shared by
// single-page and multi-page layouts.
func headerBlocks(videoURL, channel, duration string) []Block {
	return []Block{
		calloutBlock(fmt.Sprintf("📺 %s  •  ⏱️ %s  •  🔗 Watch the original video below", channel, duration), "🎬"),
		bookmarkBlock(videoURL),
		dividerBlock(),
	}
}

func summaryBlocks(sections Sections) []Block {
	blocks := []Block{headingBlock("📝 Executive Summary")}
	text := sections[sectionSummary]
	if text == "" {
		text = "No summary generated."
	}
	for _, para := range strings.Split(text, "\n\n") {
		if para = strings.TrimSpace(para); para != "" {
			blocks = append(blocks, paragraphBlock(para))
		}
	}
	return append(blocks, dividerBlock())
}

func takeawayBlocks(sections Sections) []Block {
	blocks := []Block{headingBlock("🎯 Key Takeaways")}
	for _, item := range BulletLines(sections[sectionTakeaways]) {
		blocks = append(blocks, numberedBlock(item))
	}
	return append(blocks, dividerBlock())
}

func topicBlocks(sections Sections) []Block {
	blocks := []Block{headingBlock("📚 Topics Covered")}
	topics := TopicEntries(sections[sectionTopics])
	if len(topics) > 0 {
		for _, topic := range topics {
			desc := topic.Description
			if desc == "" {
				desc = "—"
			}
			blocks = append(blocks, toggleBlock("📌 "+topic.Name, []Block{paragraphBlock(desc)}))
		}
	} else {
		for _, line := range BulletLines(sections[sectionTopics]) {
			blocks = append(blocks, bulletedBlock(line, ""))
		}
	}
	return append(blocks, dividerBlock())
}

func conceptBlocks(sections Sections) []Block {
	blocks := []Block{headingBlock("💡 Concept Deep-Dive")}
	concepts := TopicEntries(sections[sectionConcepts])
	if len(concepts) > 0 {
		for _, concept := range concepts {
			blocks = append(blocks, calloutBlock(concept.Name+"\n\n"+concept.Description, "🧠"))
		}
	} else {
		for _, line := range BulletLines(sections[sectionConcepts]) {
			blocks = append(blocks, calloutBlock(line, "🧠"))
		}
	}
	return append(blocks, dividerBlock())
}

func actionBlocks(sections Sections) []Block {
	blocks := []Block{headingBlock("✅ Action Items")}
	for _, item := range BulletLines(sections[sectionActions]) {
		blocks = append(blocks, bulletedBlock("☐ "+item, ""))
	}
	return append(blocks, dividerBlock())
}

func diagramBlocks(sections Sections) []Block {
	blocks := []Block{headingBlock("🗺️ Concept Map")}
	diagram := sections[sectionDiagram]
	code := MermaidCode(diagram)
	if code == "" {
		if diagram == "" {
			diagram = "No diagram generated."
		}
		return append(blocks, paragraphBlock(diagram), dividerBlock())
	}
	blocks = append(blocks, codeBlock(code, "mermaid"))
	if liveURL, err := mermaidLiveURL(code); err == nil {
		blocks = append(blocks, paragraphBlock("🔗 View interactive diagram: "+liveURL))
	}
	return append(blocks, dividerBlock())
}

func quoteBlocks(sections Sections) []Block {
	blocks := []Block{headingBlock("💬 Notable Quotes")}
	for _, q := range BulletLines(sections[sectionQuotes]) {
		q = strings.Trim(q, `"“”`)
		blocks = append(blocks, quoteBlock(`"`+q+`"`))
	}
	return append(blocks, dividerBlock())
}

func resourceBlocks(sections Sections) []Block {
	blocks := []Block{headingBlock("🔗 Resources Mentioned")}
	resources := TopicEntries(sections[sectionResources])
	if len(resources) > 0 {
		for _, res := range resources {
			blocks = append(blocks, bulletedBlock(" "+res.Description, res.Name+": "))
		}
	} else {
		for _, line := range BulletLines(sections[sectionResources]) {
			blocks = append(blocks, bulletedBlock(line, ""))
		}
	}
	return blocks
}

// buildSinglePage assembles the full one-page layout.
func buildSinglePage(sections Sections, videoURL, channel, duration string) []Block {
	blocks := headerBlocks(videoURL, channel, duration)
	blocks = append(blocks, summaryBlocks(sections)...)
	blocks = append(blocks, takeawayBlocks(sections)...)
	blocks = append(blocks, topicBlocks(sections)...)
	blocks = append(blocks, conceptBlocks(sections)...)
	blocks = append(blocks, actionBlocks(sections)...)
	blocks = append(blocks, diagramBlocks(sections)...)
	blocks = append(blocks, quoteBlocks(sections)...)
	blocks = append(blocks, resourceBlocks(sections)...)
	return blocks
}

// buildParentPage assembles the essentials-only parent page used for
// longer videos, ending with a navigation hint to the sub-pages.
func buildParentPage(sections Sections, videoURL, channel, duration string) []Block {
	blocks := headerBlocks(videoURL, channel, duration)
	blocks = append(blocks, summaryBlocks(sections)...)
	blocks = append(blocks, takeawayBlocks(sections)...)
	blocks = append(blocks, calloutBlock("👇 Detailed sections are organized in sub-pages below for easier navigation.", "📂"))
	return blocks
}

func buildTopicsSubPage(sections Sections) []Block {
	blocks := topicBlocks(sections)
	return append(blocks, conceptBlocks(sections)...)
}

func buildActionsSubPage(sections Sections) []Block {
	blocks := actionBlocks(sections)
	return append(blocks, resourceBlocks(sections)...)
}

func buildQuotesSubPage(sections Sections) []Block {
	blocks := quoteBlocks(sections)
	return append(blocks, diagramBlocks(sections)...)
}
