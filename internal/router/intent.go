package router

import (
	"regexp"
	"strconv"
	"strings"
)

// Intent is the classified purpose of a user message.
type Intent string

const (
	IntentSearch       Intent = "search"
	IntentSummarize    Intent = "summarize"
	IntentDownload     Intent = "download"
	IntentHistory      Intent = "history"
	IntentUnrecognized Intent = "unrecognized"
)

// rule binds a pattern to an intent at a fixed priority. Download and
// summarize outrank search and history because they reference a
// specific paper, while search and history are broad fallbacks.
type rule struct {
	pattern  *regexp.Regexp
	intent   Intent
	priority int
}

var rules = []rule{
	{regexp.MustCompile(`(?i)\bdownload(?:ing)?\b`), IntentDownload, 4},
	{regexp.MustCompile(`(?i)\bsummar(?:ize|ise|y)\b`), IntentSummarize, 3},
	{regexp.MustCompile(`(?i)\b(?:find|search|look(?:ing)? for|papers? (?:about|on))\b`), IntentSearch, 2},
	{regexp.MustCompile(`(?i)\b(?:history|previous searches|past searches|recent searches)\b`), IntentHistory, 1},
}

// Classify maps a message to the highest-priority matching intent.
func Classify(message string) Intent {
	best := IntentUnrecognized
	bestPriority := 0
	for _, r := range rules {
		if r.priority > bestPriority && r.pattern.MatchString(message) {
			best = r.intent
			bestPriority = r.priority
		}
	}
	return best
}

var (
	paperIDRegexp  = regexp.MustCompile(`(?i)\b(paper_[0-9a-f]+)\b`)
	ordinalNumRe   = regexp.MustCompile(`\b(\d+)(?:st|nd|rd|th)\b`)
	ordinalPaperRe = regexp.MustCompile(`(?i)\bpaper\s+(?:number\s+)?(\d+)\b`)
	searchPrefixRe = regexp.MustCompile(`(?i)^(?:please\s+)?(?:can you\s+)?(?:find|search(?: for)?|look(?:ing)? for)\s+(?:me\s+)?(?:some\s+)?(?:papers?\s+)?(?:about|on|for)?\s*`)
	yearSuffixRe   = regexp.MustCompile(`(?i)\b(?:from|in|published in|since)\s+((?:19|20)\d{2})\b`)
)

// ordinalWords maps spoken positions to 1-indexed ordinals; -1 means
// "the last result". Ordered so the earliest-listed word wins.
var ordinalWords = []struct {
	word    string
	ordinal int
}{
	{"first", 1}, {"second", 2}, {"third", 3}, {"fourth", 4}, {"fifth", 5},
	{"sixth", 6}, {"seventh", 7}, {"eighth", 8}, {"ninth", 9}, {"tenth", 10},
	{"last", -1},
}

// extractPaperID pulls an explicit paper_<id> handle out of a message.
func extractPaperID(message string) string {
	if m := paperIDRegexp.FindStringSubmatch(message); len(m) > 1 {
		return strings.ToLower(m[1])
	}
	return ""
}

// extractOrdinal finds a 1-indexed position reference ("the first
// paper", "the 3rd paper", "paper 2"). -1 means "last"; 0 means no
// ordinal was found.
func extractOrdinal(message string) int {
	lower := strings.ToLower(message)
	for _, entry := range ordinalWords {
		if strings.Contains(lower, entry.word+" paper") || strings.Contains(lower, "the "+entry.word) {
			return entry.ordinal
		}
	}
	if m := ordinalNumRe.FindStringSubmatch(lower); len(m) > 1 {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	if m := ordinalPaperRe.FindStringSubmatch(lower); len(m) > 1 {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n
		}
	}
	return 0
}

// extractSearchQuery strips the intent phrasing and an optional year
// qualifier from a search message, returning the bare query.
func extractSearchQuery(message string) (query string, year int) {
	query = strings.TrimSpace(message)
	if m := yearSuffixRe.FindStringSubmatch(query); len(m) > 1 {
		if y, err := strconv.Atoi(m[1]); err == nil {
			year = y
		}
		query = strings.TrimSpace(yearSuffixRe.ReplaceAllString(query, ""))
	}
	query = strings.TrimSpace(searchPrefixRe.ReplaceAllString(query, ""))
	query = strings.Trim(query, " ?.!")
	return query, year
}
