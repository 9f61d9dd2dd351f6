package handler

import (
	"cmp"
	"slices"
	"strconv"
	"strings"
)

type mediaRange struct {
	mediaType string
	quality   float64
}

// ParseAccept orders the media ranges of an Accept header by precedence.
// Ranges with a quality above 0.99 (including those with no q parameter) keep
// their original order at the front; the rest follow, stably sorted by
// descending quality. Parameters are dropped from the returned ranges and an
// unparsable q counts as 0.
func ParseAccept(header string) []string {
	var front, rest []mediaRange
	for _, token := range strings.Split(header, ",") {
		params := strings.Split(token, ";")
		mr := mediaRange{mediaType: strings.TrimSpace(params[0]), quality: 1}
		if mr.mediaType == "" {
			continue
		}
		for _, p := range params[1:] {
			key, value, ok := strings.Cut(strings.TrimSpace(p), "=")
			if !ok || strings.TrimSpace(key) != "q" {
				continue
			}
			q, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
			if err != nil {
				q = 0
			}
			mr.quality = q
		}
		if mr.quality > 0.99 {
			front = append(front, mr)
		} else {
			rest = append(rest, mr)
		}
	}

	slices.SortStableFunc(rest, func(a, b mediaRange) int {
		return cmp.Compare(b.quality, a.quality)
	})

	out := make([]string, 0, len(front)+len(rest))
	for _, mr := range append(front, rest...) {
		out = append(out, mr.mediaType)
	}
	return out
}
