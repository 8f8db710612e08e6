// Package composite resolves source references into a single decoded
// image. A reference is either one location or a list of locations
// joined by "|" (stacked top to bottom) or "[]" (stacked left to right).
// Both delimiters are reserved and cannot appear in location names.
package composite

import "strings"

// Kind tells how a Spec combines its locations.
type Kind int

const (
	Single Kind = iota
	Vertical
	Horizontal
)

func (k Kind) String() string {
	switch k {
	case Vertical:
		return "vertical"
	case Horizontal:
		return "horizontal"
	default:
		return "single"
	}
}

const (
	verticalSep   = "|"
	horizontalSep = "[]"
)

// Spec is a parsed source reference.
type Spec struct {
	Kind      Kind
	Locations []string
}

// Parse splits a source reference. The vertical delimiter is checked
// first, so in "a[]b|c" the parts are "a[]b" and "c"; Resolve treats
// each part as a reference of its own.
func Parse(ref string) Spec {
	switch {
	case strings.Contains(ref, verticalSep):
		return Spec{Kind: Vertical, Locations: strings.Split(ref, verticalSep)}
	case strings.Contains(ref, horizontalSep):
		return Spec{Kind: Horizontal, Locations: strings.Split(ref, horizontalSep)}
	default:
		return Spec{Kind: Single, Locations: []string{ref}}
	}
}
