// Package notion publishes summaries as formatted Notion pages through
// the Notion REST API. The sectioned model output is parsed into named
// sections, each section is rendered into the appropriate block types,
// and long summaries get a parent page with sub-pages for the heavy
// content.
package notion
