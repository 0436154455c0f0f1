package feed

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const dateLayout = "2006-01-02"

// Date is a calendar day in UTC.
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	t = t.UTC()
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	parsed, ok := ParseDate(s)
	if !ok {
		return fmt.Errorf("invalid date %q", s)
	}
	*d = *parsed
	return nil
}

// Layouts seen upstream, tried in order before the generic fallback.
var dateLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	"15:04 02/01/2006",
	"02/01/2006",
	"2 January 2006",
	"2 Jan 2006",
	"Monday 2 January 2006",
	dateLayout,
}

var (
	ordinalSuffix = regexp.MustCompile(`\b(\d{1,2})(st|nd|rd|th)\b`)
	publishedTag  = regexp.MustCompile(`(?i)^(published|updated|posted)\s*:?\s*`)
)

// ParseDate converts an upstream date stamp to a UTC calendar day. The second
// result is false when no layout matches; callers treat that as unknown.
func ParseDate(raw string) (*Date, bool) {
	s := strings.Join(strings.Fields(raw), " ")
	s = publishedTag.ReplaceAllString(s, "")
	s = ordinalSuffix.ReplaceAllString(s, "$1")
	if s == "" {
		return nil, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			d := NewDate(t)
			return &d, true
		}
	}

	// Slash dates are day-first in the UK, and the generic parser assumes
	// month-first, so never hand it an unmatched slash form.
	if strings.Contains(s, "/") {
		return nil, false
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return nil, false
	}
	d := NewDate(t)
	return &d, true
}
