package publisher

// Status is the payout-eligibility state of a publisher.
type Status int

const (
	StatusNotVerified Status = iota
	StatusConnected
	StatusVerified
)

// Banner is the nested presentation record owned by Info. It lives in its own
// table and is always fetched before, and merged into, the parent record.
type Banner struct {
	PublisherKey string `json:"publisher_key"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Background   string `json:"background"`
	Logo         string `json:"logo"`
}

// Info is a server-published publisher record. PublisherKey is immutable after
// creation; the whole set is replaced wholesale on periodic refresh.
type Info struct {
	PublisherKey string  `json:"publisher_key"`
	Status       Status  `json:"status"`
	Excluded     bool    `json:"excluded"`
	Address      string  `json:"address"`
	Banner       *Banner `json:"banner,omitempty"`
}
