package shared

// Page contains metadata for offset paginated listings.
type Page struct {
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
	Total      int  `json:"total"`
	HasMore    bool `json:"has_more"`
	NextOffset int  `json:"next_offset,omitempty"`
}

// NewPage computes pagination metadata. A non-positive limit falls back to
// defaultLimit.
func NewPage(limit, offset, total, defaultLimit int) Page {
	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	p := Page{Limit: limit, Offset: offset, Total: total}
	if offset+limit < total {
		p.HasMore = true
		p.NextOffset = offset + limit
	}
	return p
}
