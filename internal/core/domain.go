package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

// UnknownCategory is displayed for category references that no longer resolve.
const UnknownCategory = "Unknown"

const dateLayout = "2006-01-02"

type (
	// Kind tells whether an entry adds to or subtracts from the balance.
	Kind string

	Date struct {
		time.Time
	}

	Transaction struct {
		ID        string          `json:"id"`
		Amount    decimal.Decimal `json:"amount"`
		Kind      Kind            `json:"type"`
		Category  string          `json:"category"` // Category ID, may dangle
		Date      Date            `json:"date"`
		Notes     string          `json:"notes"`
		CreatedAt time.Time       `json:"createdAt"`
	}

	Category struct {
		ID   string `json:"id"`
		Name string `json:"name"`
		Kind Kind   `json:"type"`
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidDate      = errors.New("invalid date")
	ErrAmountRequired   = errors.New("amount is required")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrNegativeAmount   = errors.New("amount cannot be negative")
	ErrCategoryRequired = errors.New("category is required")
	ErrNameRequired     = errors.New("category name is required")
	ErrInvalidKind      = errors.New("type must be income or expense")
)

// ParseKind accepts "income" or "expense" in any case.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case Income, Expense:
		return k, nil
	default:
		return "", ErrInvalidKind
	}
}

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

func (k Kind) String() string {
	return string(k)
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
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
	// Tolerate full timestamps written by older clients.
	if len(s) > len(dateLayout) {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("parse date %q: %w", s, err)
		}
		*d = DateOf(t)
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return fmt.Errorf("parse date %q: %w", s, err)
	}
	*d = parsed
	return nil
}

// FieldErrors maps a form field to the message shown next to it.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+fe[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (fe FieldErrors) add(field string, err error) {
	if _, ok := fe[field]; !ok {
		fe[field] = err.Error()
	}
}

func (fe FieldErrors) orNil() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

func (t Transaction) Validate() error {
	errs := FieldErrors{}
	if t.Amount.IsNegative() {
		errs.add("amount", ErrNegativeAmount)
	}
	if !t.Kind.Valid() {
		errs.add("type", ErrInvalidKind)
	}
	if strings.TrimSpace(t.Category) == "" {
		errs.add("category", ErrCategoryRequired)
	}
	if err := t.Date.Validate(); err != nil {
		errs.add("date", err)
	}
	return errs.orNil()
}

func (c Category) Validate() error {
	errs := FieldErrors{}
	if strings.TrimSpace(c.Name) == "" {
		errs.add("name", ErrNameRequired)
	}
	if !c.Kind.Valid() {
		errs.add("type", ErrInvalidKind)
	}
	return errs.orNil()
}

// NewID returns a fresh opaque identifier.
func NewID() string {
	return uuid.NewString()
}

// TransactionInput is the raw, unvalidated content of the add-transaction form.
type TransactionInput struct {
	Amount   string
	Kind     string
	Category string
	Date     string
	Notes    string
}

// Parse validates the input and builds a transaction stamped with now.
// A blank date defaults to the calendar day of now.
func (in TransactionInput) Parse(now time.Time) (Transaction, error) {
	errs := FieldErrors{}

	amount, err := ParseAmount(in.Amount)
	if err != nil {
		errs.add("amount", err)
	}

	kind := Expense
	if strings.TrimSpace(in.Kind) != "" {
		k, err := ParseKind(in.Kind)
		if err != nil {
			errs.add("type", err)
		}
		kind = k
	}

	date := DateOf(now)
	if strings.TrimSpace(in.Date) != "" {
		d, err := ParseDate(in.Date)
		if err != nil {
			errs.add("date", err)
		}
		date = d
	}

	if strings.TrimSpace(in.Category) == "" {
		errs.add("category", ErrCategoryRequired)
	}
	if len(errs) > 0 {
		return Transaction{}, errs
	}

	t := Transaction{
		ID:        NewID(),
		Amount:    amount,
		Kind:      kind,
		Category:  strings.TrimSpace(in.Category),
		Date:      date,
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: now.UTC(),
	}
	return t, t.Validate()
}

// CategoryInput is the raw content of the add-category form.
type CategoryInput struct {
	Name string
	Kind string
}

func (in CategoryInput) Parse() (Category, error) {
	errs := FieldErrors{}
	if strings.TrimSpace(in.Name) == "" {
		errs.add("name", ErrNameRequired)
	}
	kind := Expense
	if strings.TrimSpace(in.Kind) != "" {
		k, err := ParseKind(in.Kind)
		if err != nil {
			errs.add("type", err)
		}
		kind = k
	}
	if len(errs) > 0 {
		return Category{}, errs
	}
	c := Category{ID: NewID(), Name: strings.TrimSpace(in.Name), Kind: kind}
	return c, c.Validate()
}

// DefaultCategories is the registry content on first run.
func DefaultCategories() []Category {
	return []Category{
		{ID: "1", Name: "Salary", Kind: Income},
		{ID: "2", Name: "Groceries", Kind: Expense},
		{ID: "3", Name: "Rent", Kind: Expense},
		{ID: "4", Name: "Utilities", Kind: Expense},
		{ID: "5", Name: "Investments", Kind: Income},
	}
}
