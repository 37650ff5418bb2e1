package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// absoluteLayouts are tried in order for timestamp strings that are
// neither `@<unix-seconds>` nor natural language.
var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

var naturalParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

// ParseTimestamp parses a user-supplied point in time. Accepted forms,
// tried in order: `@<unix-seconds>`, RFC3339 and a few common date
// layouts, then English phrases like "yesterday" or "3 days ago".
func ParseTimestamp(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}

	if rest, ok := strings.CutPrefix(s, "@"); ok {
		secs, err := strconv.ParseInt(rest, 10, 64)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse unix timestamp %q: %w", s, err)
		}
		return time.Unix(secs, 0), nil
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}

	res, err := naturalParser.Parse(s, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	if res == nil {
		return time.Time{}, fmt.Errorf("could not parse timestamp %q", s)
	}
	return res.Time, nil
}
