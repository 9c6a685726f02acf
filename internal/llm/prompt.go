package llm

import "strings"

func clipText(text string, limit int) string {
	text = strings.TrimSpace(text)
	if limit <= 0 || len(text) <= limit {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}

func buildSummaryPrompt(title, context string) string {
	if title == "" {
		title = "the paper"
	}
	builder := strings.Builder{}
	builder.WriteString("You are an expert research assistant. Provide a concise but comprehensive summary of this academic paper.\n\n")
	builder.WriteString("Structure your summary with:\n")
	builder.WriteString("**Key Findings:**\n[2-3 bullet points of main findings]\n\n")
	builder.WriteString("**Methodology:**\n[Brief overview of the research approach]\n\n")
	builder.WriteString("**Significance:**\n[Why this research matters and its potential impact]\n\n")
	builder.WriteString("Keep it accessible but accurate, suitable for someone wanting to quickly understand the paper's contribution.\n\n")
	builder.WriteString("Paper title: " + title + "\n\n")
	builder.WriteString("Content:\n" + context)
	return builder.String()
}
