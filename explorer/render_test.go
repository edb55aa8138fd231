package explorer

import (
	"bytes"
	"strings"
	"testing"
)

func TestRenderBook(t *testing.T) {
	var buf bytes.Buffer
	RenderBook(&buf, 2, BookRecord{
		Title:          "Dune",
		Authors:        "Frank Herbert",
		Genre:          "Fiction",
		Formats:        "E-book",
		Price:          "499 INR",
		GoogleInfoLink: "https://books.google.com/books?id=dune",
		AmazonLink:     "https://www.amazon.in/s?k=Dune+Frank+Herbert",
		FlipkartLink:   "https://www.flipkart.com/search?q=Dune+Frank+Herbert",
	})
	out := buf.String()

	for _, want := range []string{
		"2. Dune\n",
		"Author(s):        Frank Herbert",
		"Genre / Category: Fiction",
		"Format(s):        E-book",
		"Price:            499 INR",
		"Google Books info:     https://books.google.com/books?id=dune",
		"Google Books buy link: Not available",
		"Amazon (search):       https://www.amazon.in/s?k=Dune+Frank+Herbert",
		"Flipkart (search):     https://www.flipkart.com/search?q=Dune+Frank+Herbert",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderResultsEmpty(t *testing.T) {
	var buf bytes.Buffer
	RenderResults(&buf, nil)
	if got := buf.String(); got != "No books found for that query.\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestRenderHistory(t *testing.T) {
	var buf bytes.Buffer
	RenderHistory(&buf, nil)
	if !strings.Contains(buf.String(), "No searches yet.") {
		t.Fatalf("missing empty notice: %q", buf.String())
	}

	buf.Reset()
	RenderHistory(&buf, []*SearchLogEntry{
		{ID: 2, Query: "dune messiah", ResultCount: 1, Timestamp: "2024-01-02T00:00:00.000000"},
		{ID: 1, Query: "dune", ResultCount: 2, Timestamp: "2024-01-01T00:00:00.000000"},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("want header + 2 lines, got %q", lines)
	}
	if lines[1] != "- dune messiah — 1 results — 2024-01-02T00:00:00.000000" {
		t.Errorf("line 1 = %q", lines[1])
	}
	if lines[2] != "- dune — 2 results — 2024-01-01T00:00:00.000000" {
		t.Errorf("line 2 = %q", lines[2])
	}
}
