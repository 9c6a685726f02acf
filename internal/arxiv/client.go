package arxiv

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEndpoint    = "https://export.arxiv.org"
	defaultResultLimit = 5
	defaultHTTPTimeout = 10 * time.Second
)

// ErrSearchUnavailable reports a transport or API failure while talking
// to the arXiv search endpoint. An empty result set is not a failure.
var ErrSearchUnavailable = errors.New("paper search unavailable")

// Paper represents a subset of metadata returned by the arXiv API.
// Records are immutable once fetched; ID is the handle users reference
// papers by and is only meaningful within the result set that produced it.
type Paper struct {
	ID       string
	ArxivID  string
	Title    string
	Authors  []string
	Year     int
	Abstract string
	PDFURL   string
}

var (
	idRegexp             = regexp.MustCompile(`(?i)arxiv\.org/(?:abs|pdf)/([0-9a-z.\-]+?)(?:\.pdf)?$`)
	bareIDRegexp         = regexp.MustCompile(`^[0-9a-z.\-]+$`)
	extraneousWhitespace = regexp.MustCompile(`\s+`)
)

// SearchOptions narrows a query. Year limits results to papers
// submitted within that calendar year; Limit caps the result count.
type SearchOptions struct {
	Year  int
	Limit int
}

// Client queries the arXiv Atom API for paper metadata.
type Client struct {
	endpoint string
	limit    int
	client   *http.Client
}

// ClientConfig overrides the production endpoint and result limit.
type ClientConfig struct {
	Endpoint   string
	Limit      int
	HTTPClient *http.Client
}

// NewClient builds a search client with sane defaults.
func NewClient(cfg ClientConfig) *Client {
	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = defaultResultLimit
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &Client{endpoint: endpoint, limit: limit, client: httpClient}
}

// Search runs a free-text query and returns the matching papers in
// relevance order. Zero matches yields an empty slice, not an error.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) ([]Paper, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", ErrSearchUnavailable)
	}

	searchQuery := "all:" + query
	if opts.Year > 0 {
		searchQuery += fmt.Sprintf(" AND submittedDate:[%d0101 TO %d1231]", opts.Year, opts.Year)
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = c.limit
	}

	params := url.Values{}
	params.Set("search_query", searchQuery)
	params.Set("start", "0")
	params.Set("max_results", strconv.Itoa(limit))
	params.Set("sortBy", "relevance")
	params.Set("sortOrder", "descending")

	reqURL := c.endpoint + "/api/query?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %s (%s)", ErrSearchUnavailable, resp.Status, string(body))
	}

	entries, err := decodeFeed(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}

	papers := make([]Paper, 0, len(entries))
	for _, entry := range entries {
		papers = append(papers, entry.toPaper())
	}
	return papers, nil
}

type apiFeed struct {
	Entries []apiEntry `xml:"entry"`
}

type apiEntry struct {
	ID        string      `xml:"id"`
	Title     string      `xml:"title"`
	Summary   string      `xml:"summary"`
	Published string      `xml:"published"`
	Authors   []apiAuthor `xml:"author"`
}

type apiAuthor struct {
	Name string `xml:"name"`
}

func decodeFeed(reader io.Reader) ([]apiEntry, error) {
	var feed apiFeed
	if err := xml.NewDecoder(reader).Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to decode arxiv response: %w", err)
	}
	return feed.Entries, nil
}

func (e apiEntry) toPaper() Paper {
	arxivID := extractIdentifier(e.ID)
	if arxivID == "" {
		if idx := strings.LastIndex(e.ID, "/"); idx >= 0 {
			arxivID = e.ID[idx+1:]
		} else {
			arxivID = e.ID
		}
	}

	authors := make([]string, 0, len(e.Authors))
	for _, a := range e.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			authors = append(authors, name)
		}
	}

	year := 0
	if len(e.Published) >= 4 {
		year, _ = strconv.Atoi(e.Published[:4])
	}

	return Paper{
		ID:       DeriveID(arxivID),
		ArxivID:  arxivID,
		Title:    normalizeWhitespace(e.Title),
		Authors:  authors,
		Year:     year,
		Abstract: normalizeWhitespace(e.Summary),
		PDFURL:   fmt.Sprintf("https://arxiv.org/pdf/%s.pdf", arxivID),
	}
}

// DeriveID produces the stable paper_<hash> handle for an arXiv identifier.
func DeriveID(arxivID string) string {
	sum := md5.Sum([]byte(arxivID))
	return "paper_" + hex.EncodeToString(sum[:])[:8]
}

func extractIdentifier(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}
	if len(input) > 4 && strings.EqualFold(input[len(input)-4:], ".pdf") {
		input = input[:len(input)-4]
	}
	if matches := idRegexp.FindStringSubmatch(input); len(matches) > 1 {
		return matches[1]
	}
	// Accept bare identifiers such as 2101.00001
	if len(input) >= len("arxiv:") && strings.EqualFold(input[:len("arxiv:")], "arxiv:") {
		input = input[len("arxiv:"):]
	}
	input = strings.TrimSpace(input)
	if bareIDRegexp.MatchString(input) {
		return input
	}
	return ""
}

func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	return extraneousWhitespace.ReplaceAllString(strings.TrimSpace(s), " ")
}
