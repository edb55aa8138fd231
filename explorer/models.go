package explorer

import "time"

// User is a registered account. The password column holds a bcrypt hash, or the
// verbatim secret for rows written by the legacy app until they are upgraded.
type User struct {
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

// SearchLogEntry is one executed search. Entries are append-only.
type SearchLogEntry struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Query       string `json:"query"`
	ResultCount int    `json:"result_count"`
	Timestamp   string `json:"timestamp"`
}

// BookRecord is the flattened, display-ready form of one catalog item.
type BookRecord struct {
	Title          string `json:"title"`
	Authors        string `json:"authors"`
	Genre          string `json:"genre"`
	Formats        string `json:"formats"`
	Price          string `json:"price"`
	GoogleInfoLink string `json:"google_info_link"`
	GoogleBuyLink  string `json:"google_buy_link"`
	AmazonLink     string `json:"amazon_link"`
	FlipkartLink   string `json:"flipkart_link"`
}

// Session identifies the logged-in user for the duration of a login.
type Session struct {
	Username  string
	StartedAt time.Time

	closed bool
}

// Active reports whether the session can still be used.
func (s *Session) Active() bool { return s != nil && !s.closed }
