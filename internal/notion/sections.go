package notion

import (
	"regexp"
	"strings"
)

// Sections holds the parsed model output keyed by section name. A
// section the model omitted is present with an empty value.
type Sections map[string]string

const (
	sectionSummary   = "summary"
	sectionTakeaways = "key_takeaways"
	sectionTopics    = "topics_covered"
	sectionConcepts  = "concept_explanations"
	sectionActions   = "action_items"
	sectionDiagram   = "diagram_description"
	sectionQuotes    = "notable_quotes"
	sectionResources = "resources_mentioned"
)

var sectionKeys = []string{
	sectionSummary,
	sectionTakeaways,
	sectionTopics,
	sectionConcepts,
	sectionActions,
	sectionDiagram,
	sectionQuotes,
	sectionResources,
}

var (
	headerPattern   = regexp.MustCompile(`^###\s*(.+)`)
	numberedPrefix  = regexp.MustCompile(`^\d+[.)]\s*`)
	bulletPrefix    = regexp.MustCompile(`^[-*•]\s*`)
	boldTopicEntry  = regexp.MustCompile(`^[-*•]?\s*\*\*(.+?)\*\*[:\s-]*(.*)$`)
	plainTopicEntry = regexp.MustCompile(`^[-*•]?\s*(.+?):\s+(.+)$`)
	mermaidFence    = regexp.MustCompile("(?s)```mermaid\\s*\\n(.+?)```")
)

// ParseSections splits the model's "### SECTION" formatted output into
// named sections. Unknown headers are skipped.
func ParseSections(raw string) Sections {
	sections := make(Sections, len(sectionKeys))
	for _, key := range sectionKeys {
		sections[key] = ""
	}

	var currentKey string
	var currentContent []string
	flush := func() {
		if currentKey != "" {
			sections[currentKey] = strings.TrimSpace(strings.Join(currentContent, "\n"))
		}
	}

	for _, line := range strings.Split(raw, "\n") {
		m := headerPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			if currentKey != "" {
				currentContent = append(currentContent, line)
			}
			continue
		}
		flush()
		currentKey = ""
		currentContent = nil

		header := strings.ToUpper(strings.TrimSpace(m[1]))
		header = strings.ReplaceAll(header, " ", "_")
		for _, key := range sectionKeys {
			upper := strings.ToUpper(key)
			if strings.Contains(header, upper) || strings.Contains(upper, header) {
				currentKey = key
				break
			}
		}
	}
	flush()
	return sections
}

// BulletLines extracts individual items from bulleted or numbered
// text, stripping the markers.
func BulletLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cleaned := numberedPrefix.ReplaceAllString(line, "")
		cleaned = bulletPrefix.ReplaceAllString(cleaned, "")
		if cleaned != "" {
			lines = append(lines, cleaned)
		}
	}
	return lines
}

// TopicEntry is a named entry with a description, parsed from
// "**Name**: Description" lines.
type TopicEntry struct {
	Name        string
	Description string
}

// TopicEntries parses "**Name**: Description" entries, tolerating
// missing bold markers and multi-line descriptions.
func TopicEntries(text string) []TopicEntry {
	var entries []TopicEntry
	var name string
	var desc []string
	flush := func() {
		if name != "" {
			entries = append(entries, TopicEntry{Name: name, Description: strings.Join(desc, " ")})
		}
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := boldTopicEntry.FindStringSubmatch(line)
		if m == nil {
			m = plainTopicEntry.FindStringSubmatch(line)
		}
		if m != nil {
			flush()
			name = strings.TrimSpace(m[1])
			desc = nil
			if d := strings.TrimSpace(m[2]); d != "" {
				desc = []string{d}
			}
			continue
		}
		if name != "" {
			desc = append(desc, line)
		}
	}
	flush()
	return entries
}

// MermaidCode extracts the diagram body from a ```mermaid fence, or
// returns "" when no fence is present.
func MermaidCode(text string) string {
	if m := mermaidFence.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}
