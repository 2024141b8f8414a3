package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	CategoryFood      = "food"
	CategoryHealth    = "health"
	CategoryHousing   = "housing"
	CategorySports    = "sports"
	CategoryEducation = "education"
)

// categories is the fixed set of cost categories, in declared order.
// Report buckets are always emitted for exactly this set.
var categories = [...]string{
	CategoryFood,
	CategoryHealth,
	CategoryHousing,
	CategorySports,
	CategoryEducation,
}

// Categories returns the fixed category set in declared order.
// Callers get a copy and cannot mutate the template.
func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories[:])
	return out
}

// IsKnownCategory reports whether c is one of the fixed categories.
func IsKnownCategory(c string) bool {
	for _, known := range categories {
		if c == known {
			return true
		}
	}
	return false
}

func init() {
	// Cost sums travel on the wire as JSON numbers, not quoted strings.
	decimal.MarshalJSONWithoutQuotes = true
}

type (
	Date struct {
		time.Time
	}

	User struct {
		ID            int64  `json:"id"`
		FirstName     string `json:"first_name"`
		LastName      string `json:"last_name"`
		Birthday      Date   `json:"birthday"`
		MaritalStatus string `json:"marital_status"`
	}

	CostEntry struct {
		ID          int64           `json:"id"`
		UserID      int64           `json:"userid"`
		Sum         decimal.Decimal `json:"sum"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Date        Date            `json:"date"`
	}
)

var (
	ErrInvalidUserID    = errors.New("invalid user id")
	ErrInvalidSum       = errors.New("invalid sum")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidYear      = errors.New("invalid year")
	ErrInvalidMonth     = errors.New("invalid month")
)

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Day returns the calendar day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the calendar month as an int (1-12).
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the calendar year.
func (d Date) Year() int {
	return d.Time.Year()
}

func (e CostEntry) Validate() error {
	if e.UserID <= 0 {
		return ErrInvalidUserID
	}
	if e.Sum.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidSum
	}
	// Category presence only: out-of-set categories are stored as-is and
	// simply never surface in the fixed report template.
	if strings.TrimSpace(e.Category) == "" {
		return ErrInvalidCategory
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	return nil
}

func (u User) Validate() error {
	if u.ID <= 0 {
		return ErrInvalidUserID
	}
	if strings.TrimSpace(u.FirstName) == "" {
		return errors.New("empty first name")
	}
	if strings.TrimSpace(u.LastName) == "" {
		return errors.New("empty last name")
	}
	if u.Birthday.IsZero() {
		return errors.New("birthday cannot be zero")
	}
	if strings.TrimSpace(u.MaritalStatus) == "" {
		return errors.New("empty marital status")
	}
	return nil
}
