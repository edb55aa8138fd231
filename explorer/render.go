package explorer

import (
	"fmt"
	"io"
	"strings"
)

// RenderBook writes the numbered result block for b.
func RenderBook(w io.Writer, index int, b BookRecord) {
	fmt.Fprintf(w, "%d. %s\n", index, b.Title)
	fmt.Fprintf(w, "   Author(s):        %s\n", b.Authors)
	fmt.Fprintf(w, "   Genre / Category: %s\n", b.Genre)
	fmt.Fprintf(w, "   Format(s):        %s\n", b.Formats)
	fmt.Fprintf(w, "   Price:            %s\n", b.Price)
	fmt.Fprintln(w, "   Buy options:")
	fmt.Fprintf(w, "     Google Books info:     %s\n", orNotAvailable(b.GoogleInfoLink))
	fmt.Fprintf(w, "     Google Books buy link: %s\n", orNotAvailable(b.GoogleBuyLink))
	fmt.Fprintf(w, "     Amazon (search):       %s\n", b.AmazonLink)
	fmt.Fprintf(w, "     Flipkart (search):     %s\n", b.FlipkartLink)
	fmt.Fprintln(w, strings.Repeat("-", 79))
}

// RenderResults writes every record, or a notice when there are none.
func RenderResults(w io.Writer, books []BookRecord) {
	if len(books) == 0 {
		fmt.Fprintln(w, "No books found for that query.")
		return
	}
	fmt.Fprintf(w, "Structured results (%d):\n", len(books))
	for i, b := range books {
		RenderBook(w, i+1, b)
	}
}

// RenderHistory writes recent search log entries.
func RenderHistory(w io.Writer, entries []*SearchLogEntry) {
	fmt.Fprintln(w, "Your recent searches (local):")
	if len(entries) == 0 {
		fmt.Fprintln(w, "No searches yet.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "- %s — %d results — %s\n", e.Query, e.ResultCount, e.Timestamp)
	}
}

func orNotAvailable(link string) string {
	if link == "" {
		return "Not available"
	}
	return link
}
