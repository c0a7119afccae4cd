package summarize

import (
	"fmt"

	"tubewise/internal/transcript"
)

const systemPrompt = `You are an expert content analyst and knowledge extractor.
Your job is to analyze video transcripts and produce comprehensive, well-structured summaries
that capture ALL the knowledge from the video so the reader doesn't need to watch it.

You write in a clear, professional tone. You are thorough but concise, with no filler.
When explaining concepts, use simple language and real-world analogies.
Always structure your output exactly as requested.`

// sectionFormat is shared by the single-shot and reduce prompts so the
// output is identical regardless of strategy.
const sectionFormat = `### SUMMARY
Write a clear 2-3 paragraph executive summary of the video. Cover the main thesis, key arguments, and conclusion.

### KEY_TAKEAWAYS
List 5-10 key takeaways. Each should be actionable, specific, one clear sentence, numbered 1, 2, 3...

### TOPICS_COVERED
List each distinct topic covered. For each topic:
- **Topic Name**: Substantive 2-3 sentence explanation of what was discussed.

### CONCEPT_EXPLANATIONS
Identify 3-5 complex or important concepts. For each:
- **Concept Name**: Clear explanation in simple terms, with an analogy or example if helpful.

### ACTION_ITEMS
List 3-7 practical, specific action items a viewer should take. Include any resources or tools mentioned.

### DIAGRAM_DESCRIPTION
Describe a concept map capturing the relationships between the main ideas, as a Mermaid.js diagram:
` + "```mermaid\ngraph TD\n    A[Main Topic] --> B[Subtopic 1]\n```" + `

### NOTABLE_QUOTES
Extract 3-5 notable quotes (exact or near-exact wording). Format as: "Quote text here"

### RESOURCES_MENTIONED
List any tools, websites, books, papers, or people mentioned.
Format as: **Resource Name** - Brief description.
If none were mentioned, write "No specific resources mentioned."`

func summaryPrompt(content *transcript.ContentInfo) string {
	return fmt.Sprintf(`Analyze the following YouTube video transcript and produce a comprehensive knowledge extraction.

**Video Title:** %s
**Channel:** %s
**Duration:** %s

---
**TRANSCRIPT:**
%s
---

Produce the following sections. Be thorough: someone reading this should get all the value from the video without watching it.

## OUTPUT FORMAT (follow this exactly):

%s`, content.Title, content.Channel, content.DurationFormatted(), content.Transcript, sectionFormat)
}

func chunkMapPrompt(title string, chunkNumber, totalChunks int, chunk string) string {
	return fmt.Sprintf(`Analyze this portion of a YouTube video transcript and extract key information.

**Video Title:** %s
**Section:** Part %d of %d

---
**TRANSCRIPT SECTION:**
%s
---

Extract:
1. **Main points** discussed in this section (3-5 bullet points)
2. **Key concepts** introduced or explained
3. **Notable quotes** or statements
4. **Resources** or tools mentioned
5. **Action items** or advice given

Be thorough but concise. Focus on substantive information, not filler.`, title, chunkNumber, totalChunks, chunk)
}

func chunkReducePrompt(content *transcript.ContentInfo, combinedSummaries string) string {
	return fmt.Sprintf(`You have been given extracted summaries from different sections of a YouTube video.
Combine them into a single comprehensive knowledge extraction.

**Video Title:** %s
**Channel:** %s
**Duration:** %s

---
**EXTRACTED SECTIONS:**
%s
---

Now produce the final comprehensive summary following this exact format:

%s`, content.Title, content.Channel, content.DurationFormatted(), combinedSummaries, sectionFormat)
}
