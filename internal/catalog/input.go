package catalog

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mrlokans/bookshelf/internal/slug"
)

// MonthLayout is the "MM-YYYY" form used by forms and seed files.
const MonthLayout = "01-2006"

var monthPattern = regexp.MustCompile(`^\d\d-\d\d\d\d$`)

// BookInput carries the fields of a new book. Topics and Authors may hold
// comma-separated lists.
type BookInput struct {
	Title       string
	ISBN        string
	Description string
	Published   time.Time
	Topics      []string
	Authors     []string
}

// BookUpdate carries the editable fields of an existing book. Topic
// membership is fixed at creation.
type BookUpdate struct {
	Title       string
	ISBN        string
	Description string
	Published   time.Time
	Authors     []string
}

// SplitNames splits every value on commas, trims whitespace, drops blank
// fragments and collapses exact duplicates, keeping first-seen order.
func SplitNames(values ...string) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			name := strings.TrimSpace(part)
			if name == "" {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

// ParsePublicationMonth parses "MM-YYYY" into the first day of that month, UTC.
func ParsePublicationMonth(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if !monthPattern.MatchString(value) {
		return time.Time{}, NewValidationError("publication_date", "must use the MM-YYYY format")
	}

	month, _ := strconv.Atoi(value[:2])
	year, _ := strconv.Atoi(value[3:])
	if month < 1 || month > 12 {
		return time.Time{}, NewValidationError("publication_date", "month must be between 01 and 12")
	}
	if year < 1 {
		return time.Time{}, NewValidationError("publication_date", "year must be positive")
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
}

// FormatPublicationMonth renders t in the "MM-YYYY" form.
func FormatPublicationMonth(t time.Time) string {
	return t.Format(MonthLayout)
}

func firstOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// requireSlug rejects text that normalizes to an empty slug.
func requireSlug(field, text string) error {
	if slug.Normalize(text) == "" {
		return NewValidationError(field, "must contain at least one letter or digit")
	}
	return nil
}
