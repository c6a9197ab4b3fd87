package core

import (
	"cmp"
	"fmt"
	"slices"
)

// DefaultInvoiceDueDay is the day of the month every new invoice falls due.
const DefaultInvoiceDueDay = 10

// InvoiceBucket is the (card, year, month) key transactions are summed under.
type InvoiceBucket struct {
	CardID string
	Year   int
	Month  int
}

// BucketFor returns the bucket of a transaction charged to cardID on date d.
func BucketFor(cardID string, d Date) InvoiceBucket {
	return InvoiceBucket{CardID: cardID, Year: d.Year(), Month: d.Month()}
}

// InvoiceID is deterministic so that one bucket maps to exactly one invoice row.
func (b InvoiceBucket) InvoiceID() string {
	return InvoiceID(b.CardID, b.Year, b.Month)
}

// MonthPrefix is the YYYY-MM prefix shared by every date in the bucket.
func (b InvoiceBucket) MonthPrefix() string {
	return fmt.Sprintf("%04d-%02d", b.Year, b.Month)
}

// DueDate returns the given day of the bucket's month.
func (b InvoiceBucket) DueDate(day int) Date {
	return NewDate(b.Year, b.Month, day)
}

func (b InvoiceBucket) String() string {
	return b.CardID + "@" + b.MonthPrefix()
}

func InvoiceID(cardID string, year, month int) string {
	return fmt.Sprintf("inv-%s-%04d-%02d", cardID, year, month)
}

// UniqueBuckets drops duplicates and sorts by card, then year and month.
func UniqueBuckets(buckets []InvoiceBucket) []InvoiceBucket {
	seen := make(map[InvoiceBucket]struct{}, len(buckets))
	out := make([]InvoiceBucket, 0, len(buckets))
	for _, b := range buckets {
		if _, ok := seen[b]; ok {
			continue
		}
		seen[b] = struct{}{}
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b InvoiceBucket) int {
		return cmp.Or(
			cmp.Compare(a.CardID, b.CardID),
			cmp.Compare(a.Year, b.Year),
			cmp.Compare(a.Month, b.Month),
		)
	})
	return out
}

// IsPaid reports whether the invoice no longer counts against the card limit.
func (i Invoice) IsPaid() bool {
	return i.Status == InvoicePaid
}

// Bucket returns the bucket the invoice aggregates.
func (i Invoice) Bucket() InvoiceBucket {
	return InvoiceBucket{CardID: i.CardID, Year: i.Year, Month: i.Month}
}
