package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the storage and wire format for calendar dates.
const DateLayout = "2006-01-02"

const (
	BrandVisa       Brand = "visa"
	BrandMastercard Brand = "mastercard"
	BrandElo        Brand = "elo"
	BrandAmex       Brand = "amex"
)

const (
	InvoiceOpen   InvoiceStatus = "open"
	InvoiceClosed InvoiceStatus = "closed"
	InvoicePaid   InvoiceStatus = "paid"
)

type (
	Brand         string
	InvoiceStatus string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Person struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Color string `json:"color"`
		Owner string `json:"-"`
	}

	Card struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		LastDigits string `json:"lastDigits"`
		Brand      Brand  `json:"brand"`
		Limit      Money  `json:"limit"`
		ClosingDay int    `json:"closingDay"`
		DueDay     int    `json:"dueDay"`
		Color      string `json:"color"`
		Active     bool   `json:"active"`
		Owner      string `json:"-"`
	}

	Category struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Icon  string `json:"icon"`
		Color string `json:"color"`
		Owner string `json:"-"`
	}

	Transaction struct {
		ID                 string `json:"id"`
		GroupID            string `json:"groupId"`
		Description        string `json:"description"`
		Amount             Money  `json:"amount"`
		Date               Date   `json:"date"`
		CardID             string `json:"cardId"`
		PersonID           string `json:"personId"`
		CategoryID         string `json:"categoryId"`
		Installments       int    `json:"installments"`
		CurrentInstallment int    `json:"currentInstallment"`
		Owner              string `json:"-"`
	}

	// TransactionInput carries the caller-editable fields of a transaction.
	// ID is only honoured on create, as the base id of the installment group.
	TransactionInput struct {
		ID               string
		Description      string
		Amount           Money
		Date             Date
		CardID           string
		PersonID         string
		CategoryID       string
		Installments     int
		StartInstallment int
	}

	Invoice struct {
		ID          string        `json:"id"`
		CardID      string        `json:"cardId"`
		Month       int           `json:"month"`
		Year        int           `json:"year"`
		TotalAmount Money         `json:"totalAmount"`
		Status      InvoiceStatus `json:"status"`
		DueDate     Date          `json:"dueDate"`
		Owner       string        `json:"-"`
	}

	User struct {
		ID           string    `json:"id"`
		Name         string    `json:"name"`
		Email        string    `json:"email"`
		PasswordHash string    `json:"-"`
		CreatedAt    time.Time `json:"createdAt"`
	}
)

var (
	ErrValidation          = errors.New("validation failed")
	ErrNotFound            = errors.New("not found")
	ErrDuplicateEmail      = errors.New("email already registered")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidInstallments = fmt.Errorf("%w: invalid installments", ErrValidation)
	ErrEmptyDescription    = fmt.Errorf("%w: description is required", ErrValidation)
	ErrInvalidDate         = fmt.Errorf("%w: invalid date", ErrValidation)
	ErrMissingCard         = fmt.Errorf("%w: cardId is required", ErrValidation)
	ErrUnknownCard         = fmt.Errorf("%w: card does not exist", ErrValidation)
	ErrInvalidBrand        = fmt.Errorf("%w: brand must be one of visa, mastercard, elo, amex", ErrValidation)
	ErrInvalidDay          = fmt.Errorf("%w: day must be between 1 and 31", ErrValidation)
	ErrEmptyName           = fmt.Errorf("%w: name is required", ErrValidation)
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string. Any time component is rejected.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (b Brand) Validate() error {
	switch b {
	case BrandVisa, BrandMastercard, BrandElo, BrandAmex:
		return nil
	}
	return ErrInvalidBrand
}

func (p Person) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (c Card) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	if err := c.Brand.Validate(); err != nil {
		return err
	}
	if c.ClosingDay < 1 || c.ClosingDay > 31 {
		return fmt.Errorf("%w (closingDay)", ErrInvalidDay)
	}
	if c.DueDay < 1 || c.DueDay > 31 {
		return fmt.Errorf("%w (dueDay)", ErrInvalidDay)
	}
	return nil
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// Validate checks the fields required to store a transaction. Amount is
// deliberately not checked: unparsable amounts arrive here as zero.
func (in TransactionInput) Validate() error {
	if strings.TrimSpace(in.Description) == "" {
		return ErrEmptyDescription
	}
	if len(in.Description) > 200 {
		return fmt.Errorf("%w: description too long (max 200 characters)", ErrValidation)
	}
	if in.Date.IsZero() {
		return ErrInvalidDate
	}
	if strings.TrimSpace(in.CardID) == "" {
		return ErrMissingCard
	}
	if in.Installments > MaxInstallments {
		return fmt.Errorf("%w: at most %d installments", ErrInvalidInstallments, MaxInstallments)
	}
	return nil
}

// Normalize applies the defaults for missing installment fields.
func (in TransactionInput) Normalize() TransactionInput {
	if in.Installments < 1 {
		in.Installments = 1
	}
	if in.StartInstallment < 1 {
		in.StartInstallment = 1
	}
	in.Description = strings.TrimSpace(in.Description)
	return in
}

// IsGrouped reports whether the transaction is one row of a multi-installment purchase.
func (t Transaction) IsGrouped() bool {
	return t.Installments > 1
}

// Bucket returns the invoice bucket the transaction is aggregated into.
func (t Transaction) Bucket() InvoiceBucket {
	return BucketFor(t.CardID, t.Date)
}
