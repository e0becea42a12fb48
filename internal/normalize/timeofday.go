package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pfrederiksen/gigmerge/internal/event"
)

var clockPattern = regexp.MustCompile(`(\d{1,2})(?::(\d{2}))?\s*(am|pm)?`)

var timeWords = strings.NewReplacer(
	"a.m.", "am",
	"p.m.", "pm",
	"noon", "12pm",
	"midnight", "12am",
)

type clock struct {
	hour   int // 0-23
	minute int
}

func (c clock) minutes() int {
	return c.hour*60 + c.minute
}

func (c clock) String() string {
	suffix := "am"
	h := c.hour
	if h >= 12 {
		suffix = "pm"
		h -= 12
	}
	if h == 0 {
		h = 12
	}
	if c.minute == 0 {
		return fmt.Sprintf("%d%s", h, suffix)
	}
	return fmt.Sprintf("%d:%02d%s", h, c.minute, suffix)
}

// Time normalizes a time-of-day string to the compact form used for
// display ("8pm", "7:30pm"). The second result is false when raw was
// non-empty but held no usable time, in which case the default is returned.
func Time(raw string) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		return event.DefaultTime, true
	}
	c, ok := parseClock(raw)
	if !ok {
		return event.DefaultTime, false
	}
	return c.String(), true
}

// Minutes converts a time-of-day string to minutes after midnight.
func Minutes(s string) (int, bool) {
	c, ok := parseClock(s)
	if !ok {
		return 0, false
	}
	return c.minutes(), true
}

type clockMatch struct {
	start, end int
	c          clock
}

// parseClock picks the show time out of s. When both doors and show
// times are listed, the one tied to "show" wins.
func parseClock(raw string) (clock, bool) {
	s := timeWords.Replace(strings.ToLower(strings.TrimSpace(raw)))

	var found []clockMatch
	for _, loc := range clockPattern.FindAllStringSubmatchIndex(s, -1) {
		if loc[0] > 0 && (isDigit(s[loc[0]-1]) || s[loc[0]-1] == '$') {
			continue
		}
		if loc[1] < len(s) && isDigit(s[loc[1]]) {
			continue
		}
		c, ok := toClock(s, loc)
		if !ok {
			continue
		}
		found = append(found, clockMatch{start: loc[0], end: loc[1], c: c})
	}
	if len(found) == 0 {
		return clock{}, false
	}

	if show := strings.Index(s, "show"); show >= 0 {
		for _, m := range found {
			if m.start > show {
				return m.c, true
			}
		}
		return found[len(found)-1].c, true
	}
	return found[0].c, true
}

func toClock(s string, loc []int) (clock, bool) {
	hour, err := strconv.Atoi(s[loc[2]:loc[3]])
	if err != nil {
		return clock{}, false
	}
	minute := 0
	if loc[4] >= 0 {
		if minute, err = strconv.Atoi(s[loc[4]:loc[5]]); err != nil || minute > 59 {
			return clock{}, false
		}
	}
	suffix := ""
	if loc[6] >= 0 {
		suffix = s[loc[6]:loc[7]]
	}

	switch {
	case hour > 23:
		return clock{}, false
	case suffix == "am":
		if hour == 12 {
			hour = 0
		} else if hour > 12 {
			return clock{}, false
		}
	case suffix == "pm":
		if hour < 12 {
			hour += 12
		}
	case hour == 0:
		// bare "0" is midnight
	case hour < 12:
		// evening listings omit the marker
		hour += 12
	}
	return clock{hour: hour, minute: minute}, true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
