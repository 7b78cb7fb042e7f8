// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"errors"
	"fmt"
	"time"
)

// DateLayout is the accepted form of a target date.
const DateLayout = "2006-01-02"

// arxivStampLayout is the timestamp form used in submittedDate ranges.
const arxivStampLayout = "200601021504"

// ErrInvalidDate is returned when a target date is not in YYYY-MM-DD form.
var ErrInvalidDate = errors.New("invalid date")

// Window bounds one catalog query: a single UTC day [Start, End), one
// category, and a cap on the number of records returned.
type Window struct {
	Start    time.Time
	End      time.Time
	Category string
	Limit    int
}

// NewWindow builds the window for the day named by date (YYYY-MM-DD).
func NewWindow(date, category string, limit int) (Window, error) {
	start, err := time.Parse(DateLayout, date)
	if err != nil {
		return Window{}, fmt.Errorf("%w %q: expected YYYY-MM-DD", ErrInvalidDate, date)
	}
	if category == "" {
		return Window{}, fmt.Errorf("category is required")
	}
	if limit <= 0 {
		return Window{}, fmt.Errorf("limit must be positive, got %d", limit)
	}
	return Window{
		Start:    start,
		End:      start.AddDate(0, 0, 1),
		Category: category,
		Limit:    limit,
	}, nil
}

// Query returns the arXiv search_query for the window. The range is written
// inclusive-start, exclusive-end.
func (w Window) Query() string {
	return fmt.Sprintf("cat:%s AND submittedDate:[%s TO %s]",
		w.Category, w.Start.Format(arxivStampLayout), w.End.Format(arxivStampLayout))
}
