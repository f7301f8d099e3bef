package web

import (
	"fmt"
	"math"

	"tasktrack/internal/stats"
)

const (
	pieCX     = 100.0
	pieCY     = 100.0
	pieRadius = 80.0
)

// slice is one wedge of the status pie.
type slice struct {
	Label   string
	Color   string
	Percent int
	Path    string
	Full    bool
}

// pieSlices lays out the non-empty buckets clockwise from twelve o'clock.
func pieSlices(s stats.Summary) []slice {
	if s.Total == 0 {
		return nil
	}
	var out []slice
	angle := -math.Pi / 2
	for _, b := range s.NonZero() {
		sl := slice{Label: b.Label, Color: b.Color, Percent: s.Share(b)}
		if b.Count == s.Total {
			sl.Full = true
			out = append(out, sl)
			continue
		}
		sweep := 2 * math.Pi * float64(b.Count) / float64(s.Total)
		end := angle + sweep
		large := 0
		if sweep > math.Pi {
			large = 1
		}
		sl.Path = fmt.Sprintf("M%.2f %.2f L%.2f %.2f A%.0f %.0f 0 %d 1 %.2f %.2f Z",
			pieCX, pieCY,
			pieCX+pieRadius*math.Cos(angle), pieCY+pieRadius*math.Sin(angle),
			pieRadius, pieRadius, large,
			pieCX+pieRadius*math.Cos(end), pieCY+pieRadius*math.Sin(end),
		)
		angle = end
		out = append(out, sl)
	}
	return out
}
