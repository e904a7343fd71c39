package htmlsearch

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var reCount = regexp.MustCompile(`(?i)(\d+(?:[.,\s]\d+)*)\s*(mil|mi|bi|k|m|b)?\b`)

var multipliers = map[string]float64{
	"k":   1e3,
	"mil": 1e3,
	"m":   1e6,
	"mi":  1e6,
	"b":   1e9,
	"bi":  1e9,
}

// ParseCount reads counters such as "1,234 views", "1.2M", "3K likes" or
// "1,2 mi de visualizações". Text without a number is 0.
func ParseCount(s string) int64 {
	m := reCount.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0
	}
	num, suffix := m[1], strings.ToLower(m[2])
	num = strings.Join(strings.Fields(num), "")

	mult, scaled := multipliers[suffix]
	if !scaled {
		// no suffix: separators are thousands separators
		digits := strings.NewReplacer(",", "", ".", "").Replace(num)
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return 0
		}
		return n
	}
	// with a suffix the last separator is a decimal point
	if i := strings.LastIndexAny(num, ".,"); i >= 0 {
		num = strings.NewReplacer(",", "", ".", "").Replace(num[:i]) + "." + num[i+1:]
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	return int64(math.Round(f * mult))
}
