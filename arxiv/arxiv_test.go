package arxiv

import (
	"strings"
	"testing"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>ArXiv Query: search_query=all:superconductivity</title>
  <entry>
    <id>http://arxiv.org/abs/2501.01234v1</id>
    <link href="http://arxiv.org/abs/2501.01234v1" rel="alternate" type="text/html"/>
    <title>Room-Temperature Superconductivity in Hydride Systems</title>
    <summary>  We report measurements of
      hydride systems under pressure, showing
      evidence of superconducting transitions.  </summary>
    <published>2025-01-03T18:00:00Z</published>
    <updated>2025-01-03T18:00:00Z</updated>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2501.05678v1</id>
    <link href="http://arxiv.org/abs/2501.05678v1" rel="alternate" type="text/html"/>
    <title>A Survey of Flux Pinning Mechanisms</title>
    <summary>Survey of pinning mechanisms in type-II superconductors.</summary>
    <published>2025-01-05T09:30:00Z</published>
    <updated>2025-01-05T09:30:00Z</updated>
  </entry>
</feed>`

func TestPapersFromString(t *testing.T) {
	source := NewSource("superconductivity", 5)

	papers, err := source.PapersFromString(sampleFeed)
	if err != nil {
		t.Fatalf("PapersFromString failed: %v", err)
	}

	if len(papers) != 2 {
		t.Fatalf("expected 2 papers, got %d", len(papers))
	}

	first := papers[0]
	if first.Title != "Room-Temperature Superconductivity in Hydride Systems" {
		t.Errorf("unexpected title: %q", first.Title)
	}
	if first.Link != "http://arxiv.org/abs/2501.01234v1" {
		t.Errorf("unexpected link: %q", first.Link)
	}
	if first.Published.IsZero() {
		t.Error("expected a parsed publication date")
	}
	if !strings.Contains(first.Summary, "hydride systems under pressure") {
		t.Errorf("unexpected summary: %q", first.Summary)
	}
}

func TestPapersFromStringInvalidFeed(t *testing.T) {
	source := NewSource("x", 1)

	if _, err := source.PapersFromString("not a feed"); err == nil {
		t.Error("expected an error for invalid feed content")
	}
}

func TestCondense(t *testing.T) {
	multiline := "line one\n  line   two\n\tline three"
	if got := condense(multiline); got != "line one line two line three" {
		t.Errorf("condense collapsed whitespace wrong: %q", got)
	}

	long := strings.Repeat("a", summaryMaxLen+50)
	if got := condense(long); len(got) != summaryMaxLen+3 || !strings.HasSuffix(got, "...") {
		t.Errorf("condense did not truncate long text, len=%d", len(got))
	}
}

func TestNewSourceDefaultLimit(t *testing.T) {
	source := NewSource("topic", 0)
	if source.limit != DefaultLimit {
		t.Errorf("expected default limit %d, got %d", DefaultLimit, source.limit)
	}
}
