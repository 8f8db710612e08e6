package caption

import (
	"fmt"
	"strconv"
	"strings"
)

// defaultBoxes place the first caption at the top and the second at the
// bottom of the image. Later captions reuse the last box.
var defaultBoxes = []Caption{
	{X: 0.05, Y: 0, Width: 0.9, Height: 0.25},
	{X: 0.05, Y: 0.75, Width: 0.9, Height: 0.25},
}

// Parse reads a caption given as "text" or "text@x,y,w,h" where the box
// values are fractions in [0, 1]. Only a suffix after the last @ that
// holds four numbers is a box; otherwise the whole string is text and
// the index-th default box is used. A box with a value outside [0, 1]
// is an error.
func Parse(s string, index int) (Caption, error) {
	if at := strings.LastIndex(s, "@"); at >= 0 {
		if v, ok := parseBox(s[at+1:]); ok {
			for _, f := range v {
				if !(f >= 0 && f <= 1) {
					return Caption{}, fmt.Errorf("caption %q: %v is outside [0, 1]", s, f)
				}
			}
			return Caption{Text: s[:at], X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
		}
	}

	c := defaultBoxes[min(index, len(defaultBoxes)-1)]
	c.Text = s
	return c, nil
}

func parseBox(box string) ([4]float64, bool) {
	var v [4]float64
	parts := strings.Split(box, ",")
	if len(parts) != len(v) {
		return v, false
	}
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return v, false
		}
		v[i] = f
	}
	return v, true
}
