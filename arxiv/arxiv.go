// Package arxiv fetches recent papers from the arXiv Atom API so essay
// generation can be grounded in current literature.
package arxiv

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

const (
	// DefaultEndpoint is the public arXiv query API.
	DefaultEndpoint = "https://export.arxiv.org/api/query"

	// DefaultLimit caps how many papers a source fetches per query.
	DefaultLimit = 5

	// summaryMaxLen keeps abstracts short enough to prepend to a prompt.
	summaryMaxLen = 400
)

// Paper is one arXiv entry.
type Paper struct {
	Title     string
	Summary   string
	Link      string
	Published time.Time
}

// Source queries arXiv for papers related to a single topic, fixed at
// construction time.
type Source struct {
	endpoint string
	topic    string
	limit    int
	parser   *gofeed.Parser
}

// NewSource creates a Source for the given topic. A non-positive limit falls
// back to DefaultLimit.
func NewSource(topic string, limit int) *Source {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Source{
		endpoint: DefaultEndpoint,
		topic:    topic,
		limit:    limit,
		parser:   gofeed.NewParser(),
	}
}

// Papers fetches the most recently submitted papers matching the topic.
func (s *Source) Papers(ctx context.Context) ([]*Paper, error) {
	query := url.Values{}
	query.Set("search_query", "all:"+s.topic)
	query.Set("sortBy", "submittedDate")
	query.Set("sortOrder", "descending")
	query.Set("max_results", strconv.Itoa(s.limit))

	feed, err := s.parser.ParseURLWithContext(s.endpoint+"?"+query.Encode(), ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query arxiv for %q: %w", s.topic, err)
	}

	return extractPapers(feed), nil
}

// PapersFromString parses papers out of raw Atom feed content.
func (s *Source) PapersFromString(feedContent string) ([]*Paper, error) {
	feed, err := s.parser.ParseString(feedContent)
	if err != nil {
		return nil, fmt.Errorf("failed to parse arxiv feed: %w", err)
	}

	return extractPapers(feed), nil
}

// Summaries returns one condensed line per paper, suitable for prepending to
// a generation prompt. It implements the society's research source contract.
func (s *Source) Summaries(ctx context.Context) ([]string, error) {
	papers, err := s.Papers(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]string, len(papers))
	for i, paper := range papers {
		summaries[i] = fmt.Sprintf("%s (%s): %s", paper.Title, paper.Link, condense(paper.Summary))
	}
	return summaries, nil
}

func extractPapers(feed *gofeed.Feed) []*Paper {
	papers := make([]*Paper, 0, len(feed.Items))

	for _, item := range feed.Items {
		paper := &Paper{
			Title:   strings.TrimSpace(item.Title),
			Summary: strings.TrimSpace(item.Description),
			Link:    item.Link,
		}

		if paper.Summary == "" {
			paper.Summary = strings.TrimSpace(item.Content)
		}

		if item.PublishedParsed != nil {
			paper.Published = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			paper.Published = *item.UpdatedParsed
		}

		papers = append(papers, paper)
	}

	return papers
}

// condense collapses whitespace and truncates long abstracts.
func condense(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > summaryMaxLen {
		s = s[:summaryMaxLen] + "..."
	}
	return s
}
