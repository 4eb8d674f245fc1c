package models

// PaginationCursor tracks the last loaded recommendations page
type PaginationCursor struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	HasMore bool `json:"hasMore"`
}

// RefillThreshold is the queue depth at which the next page is fetched
func (c PaginationCursor) RefillThreshold() int {
	return c.Limit / 2
}
