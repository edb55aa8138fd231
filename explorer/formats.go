package explorer

import (
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// Format tags reported in BookRecord.Formats.
const (
	FormatEbook      = "E-book"
	FormatPurchase   = "Print / Purchase"
	FormatIdentified = "Print (details available)"
	FormatUnknown    = "Unknown"
)

// formatSignal contributes tag when it holds for an item.
type formatSignal struct {
	tag  string
	test func(item gjson.Result) bool
}

var formatSignals = []formatSignal{
	{FormatEbook, hasEbook},
	{FormatPurchase, isPurchasable},
	{FormatIdentified, hasIdentifiers},
}

// hasEbook looks at the explicit ebook flag and the epub/pdf access flags.
func hasEbook(item gjson.Result) bool {
	return truthy(item.Get("saleInfo.isEbook")) ||
		truthy(item.Get("accessInfo.epub.isAvailable")) ||
		truthy(item.Get("accessInfo.pdf.isAvailable"))
}

func isPurchasable(item gjson.Result) bool {
	s := item.Get("saleInfo.saleability")
	return s.Type == gjson.String && s.Str != "" && !strings.Contains(s.Str, "NOT_FOR_SALE")
}

func hasIdentifiers(item gjson.Result) bool {
	return truthy(item.Get("volumeInfo.industryIdentifiers"))
}

// itemFormats returns the sorted, comma-joined format tags for item. It is
// never empty.
func itemFormats(item gjson.Result) string {
	var tags []string
	for _, sig := range formatSignals {
		if sig.test(item) {
			tags = append(tags, sig.tag)
		}
	}
	if len(tags) == 0 {
		return FormatUnknown
	}
	sort.Strings(tags)
	return strings.Join(tags, ", ")
}

// truthy treats absent, null, false, zero, "" and empty containers as false.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.True:
		return true
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	case gjson.JSON:
		if r.IsArray() {
			return len(r.Array()) > 0
		}
		return len(r.Map()) > 0
	default:
		return false
	}
}
