package explorer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// Result-count bounds accepted by the catalog.
const (
	MinResults        = 1
	MaxResults        = 12
	DefaultMaxResults = 6
)

const (
	amazonSearchURL   = "https://www.amazon.in/s?k="
	flipkartSearchURL = "https://www.flipkart.com/search?q="
)

// CatalogClient queries the Google Books volumes endpoint.
type CatalogClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	log     *logrus.Logger
}

// NewCatalogClient initializes a client from cfg.
func NewCatalogClient(cfg *Config, log *logrus.Logger) *CatalogClient {
	return &CatalogClient{
		baseURL: strings.TrimRight(cfg.CatalogURL, "/"),
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// ClampResults bounds n to [MinResults, MaxResults].
func ClampResults(n int) int {
	if n < MinResults {
		return MinResults
	}
	if n > MaxResults {
		return MaxResults
	}
	return n
}

func (c *CatalogClient) volumesURL(query string, maxResults int) string {
	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(ClampResults(maxResults)))
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}
	return c.baseURL + "/volumes?" + params.Encode()
}

// Search returns the books matching query. A failed request is reported as
// an empty result; only a malformed response body is returned as an error.
func (c *CatalogClient) Search(ctx context.Context, query string, maxResults int) ([]BookRecord, error) {
	records, err := c.Lookup(ctx, query, maxResults)
	if errors.Is(err, ErrCatalogUnavailable) {
		c.log.WithError(err).WithField("query", query).Warn("catalog request failed, reporting no results")
		return []BookRecord{}, nil
	}
	return records, err
}

// Lookup is Search without the failure collapse: request failures come back
// wrapped in ErrCatalogUnavailable.
func (c *CatalogClient) Lookup(ctx context.Context, query string, maxResults int) ([]BookRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.volumesURL(query, maxResults), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrCatalogUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code: %d", ErrCatalogUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", ErrCatalogUnavailable, err)
	}

	records, err := ParseVolumes(body)
	if err != nil {
		return nil, err
	}
	c.log.WithFields(logrus.Fields{"query": query, "results": len(records)}).Debug("catalog search complete")
	return records, nil
}

// ParseVolumes shapes a volumes response body into BookRecords, keeping the
// item order. A body without items yields an empty slice; items present but
// not an array (null included) is malformed.
func ParseVolumes(body []byte) ([]BookRecord, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrMalformedResponse
	}
	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: top-level value is not an object", ErrMalformedResponse)
	}

	records := []BookRecord{}
	items := doc.Get("items")
	if !items.Exists() {
		return records, nil
	}
	if !items.IsArray() {
		return nil, fmt.Errorf("%w: items is not an array", ErrMalformedResponse)
	}

	for i, item := range items.Array() {
		if !item.IsObject() {
			return nil, fmt.Errorf("%w: item %d is not an object", ErrMalformedResponse, i)
		}
		records = append(records, shapeItem(item))
	}
	return records, nil
}

func shapeItem(item gjson.Result) BookRecord {
	info := item.Get("volumeInfo")
	sale := item.Get("saleInfo")

	title := "Unknown title"
	if t := info.Get("title"); t.Exists() && t.Type != gjson.Null {
		title = t.String()
	}
	authors := stringList(info.Get("authors"))

	term := url.QueryEscape(strings.TrimSpace(title + " " + strings.Join(authors, " ")))

	return BookRecord{
		Title:          title,
		Authors:        joinOrUnknown(authors),
		Genre:          joinOrUnknown(stringList(info.Get("categories"))),
		Formats:        itemFormats(item),
		Price:          itemPrice(sale),
		GoogleInfoLink: info.Get("infoLink").String(),
		GoogleBuyLink:  sale.Get("buyLink").String(),
		AmazonLink:     amazonSearchURL + term,
		FlipkartLink:   flipkartSearchURL + term,
	}
}

// itemPrice prefers listPrice and falls back to retailPrice.
func itemPrice(sale gjson.Result) string {
	price := sale.Get("listPrice")
	if !truthy(price) {
		price = sale.Get("retailPrice")
	}
	if !price.IsObject() {
		return "N/A"
	}
	amount := price.Get("amount")
	if amount.Type != gjson.Number {
		return "N/A"
	}
	return strings.TrimSpace(formatAmount(amount) + " " + price.Get("currencyCode").String())
}

// formatAmount keeps integer literals as written and prints fractional or
// exponent literals in their shortest float form, always with a decimal
// point or an exponent: 450.0 and 1e2 print as "450.0" and "100.0".
func formatAmount(amount gjson.Result) string {
	if !strings.ContainsAny(amount.Raw, ".eE") {
		return amount.Raw
	}
	n := amount.Num
	sci := strconv.FormatFloat(n, 'e', -1, 64)
	exp, _ := strconv.Atoi(sci[strings.IndexByte(sci, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return sci
	}
	s := strconv.FormatFloat(n, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

func stringList(r gjson.Result) []string {
	var out []string
	for _, v := range r.Array() {
		out = append(out, v.String())
	}
	return out
}

func joinOrUnknown(values []string) string {
	if len(values) == 0 {
		return "Unknown"
	}
	return strings.Join(values, ", ")
}
