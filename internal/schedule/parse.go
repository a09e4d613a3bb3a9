package schedule

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/width"
)

var (
	numericRun  = regexp.MustCompile(`\d+`)
	clockFormat = regexp.MustCompile(`(\d{1,2}):(\d{2})`)
)

// Clock is a wall-clock time of day.
type Clock struct {
	Hour   int
	Minute int
}

// ParseDate reads the first numeric runs of text as year, month, day. Two runs
// are month and day in defaultYear. Anything else, or an impossible calendar
// date, yields nil.
func ParseDate(text string, defaultYear int, loc *time.Location) *time.Time {
	runs := numericRun.FindAllString(width.Narrow.String(text), -1)
	var y, m, d int
	switch {
	case len(runs) >= 3:
		y, m, d = atoi(runs[0]), atoi(runs[1]), atoi(runs[2])
	case len(runs) == 2:
		y, m, d = defaultYear, atoi(runs[0]), atoi(runs[1])
	default:
		return nil
	}
	if y <= 0 || m < 1 || m > 12 || d < 1 {
		return nil
	}
	if loc == nil {
		loc = time.UTC
	}
	date := time.Date(y, time.Month(m), d, 0, 0, 0, 0, loc)
	if date.Year() != y || int(date.Month()) != m || date.Day() != d {
		return nil
	}
	return &date
}

// ParseTimes extracts H:MM patterns. The first two valid ones are start and
// end; a single one is the start only.
func ParseTimes(text string) (start, end *Clock) {
	normalized := strings.ReplaceAll(width.Narrow.String(text), "∶", ":")
	var clocks []Clock
	for _, m := range clockFormat.FindAllStringSubmatch(normalized, -1) {
		h, minute := atoi(m[1]), atoi(m[2])
		if h > 23 || minute > 59 {
			continue
		}
		clocks = append(clocks, Clock{Hour: h, Minute: minute})
		if len(clocks) == 2 {
			break
		}
	}
	switch len(clocks) {
	case 0:
		return nil, nil
	case 1:
		return &clocks[0], nil
	default:
		return &clocks[0], &clocks[1]
	}
}

// combine places clocks on date. A nil date discards any time; a date with
// no start time defaults to midnight.
func combine(date *time.Time, start, end *Clock) (*time.Time, *time.Time) {
	if date == nil {
		return nil, nil
	}
	at := func(c Clock) *time.Time {
		t := time.Date(date.Year(), date.Month(), date.Day(), c.Hour, c.Minute, 0, 0, date.Location())
		return &t
	}
	if start == nil {
		return at(Clock{}), nil
	}
	startAt := at(*start)
	if end == nil {
		return startAt, nil
	}
	return startAt, at(*end)
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
