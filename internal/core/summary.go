package core

// CardUsage summarizes how much of a card's limit is committed to unpaid invoices.
type CardUsage struct {
	Card         Card  `json:"card"`
	UsedCredit   Money `json:"usedCredit"`
	Available    Money `json:"available"`
	OpenInvoices int   `json:"openInvoices"`
}

// NewCardUsage derives the available credit from the card limit.
func NewCardUsage(c Card, used Money, openInvoices int) CardUsage {
	return CardUsage{
		Card:         c,
		UsedCredit:   used,
		Available:    c.Limit.Sub(used),
		OpenInvoices: openInvoices,
	}
}

// TransactionFilter narrows a transaction listing. Empty fields do not filter.
type TransactionFilter struct {
	Page     int
	PageSize int
	Month    string // YYYY-MM
	Search   string
	PersonID string
	CardID   string
}

// Pagination describes the position of a page within a listing.
type Pagination struct {
	TotalItems  int  `json:"totalItems"`
	TotalPages  int  `json:"totalPages"`
	CurrentPage int  `json:"currentPage"`
	PageSize    int  `json:"pageSize"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

// NewPagination computes page counts for total items split into pages of size.
func NewPagination(total, page, size int) Pagination {
	pages := 0
	if size > 0 {
		pages = (total + size - 1) / size
	}
	return Pagination{
		TotalItems:  total,
		TotalPages:  pages,
		CurrentPage: page,
		PageSize:    size,
		HasNextPage: page < pages,
		HasPrevPage: page > 1,
	}
}

// TransactionPage is one page of a filtered transaction listing.
type TransactionPage struct {
	Data       []Transaction `json:"data"`
	Pagination Pagination    `json:"pagination"`
}
