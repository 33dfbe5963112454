package essay

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// DefaultPages is the page count used when the caller does not specify one.
	DefaultPages = 5

	// WordsPerPage is the estimate used to derive the word-count target from
	// the requested page count.
	WordsPerPage = 500

	// DefaultInstructions is the recommendation applied when the caller gives
	// no additional instructions.
	DefaultInstructions = "Include at least 10 scientific references and add visual representations where appropriate."
)

var (
	// ErrEmptyTopic is returned when the topic is empty or whitespace-only.
	ErrEmptyTopic = errors.New("essay topic is empty")

	// ErrInvalidPages is returned when the requested page count is below 1.
	ErrInvalidPages = errors.New("page count must be at least 1")
)

// Request describes a single essay generation request. A Request is never
// mutated after creation; the task prompt and output path are derived from it.
type Request struct {
	Topic        string
	Pages        int
	Instructions string

	// OutputName overrides the auto-generated output file name when set.
	OutputName string
}

// NewRequest creates a Request, applying the default page count and
// instructions for zero values.
func NewRequest(topic string, pages int, instructions string) Request {
	if pages == 0 {
		pages = DefaultPages
	}
	if instructions == "" {
		instructions = DefaultInstructions
	}
	return Request{
		Topic:        topic,
		Pages:        pages,
		Instructions: instructions,
	}
}

// Validate checks the request invariants: a non-empty topic and a positive
// page count. It runs before any model call so bad input never reaches the
// orchestrator.
func (r Request) Validate() error {
	if strings.TrimSpace(r.Topic) == "" {
		return ErrEmptyTopic
	}
	if r.Pages < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidPages, r.Pages)
	}
	return nil
}

// WordCount returns the word-count target derived from the page count.
func (r Request) WordCount() int {
	return r.Pages * WordsPerPage
}
