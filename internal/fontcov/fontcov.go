// Package fontcov extracts the set of Unicode code points a TrueType or
// OpenType font can render by reading its 'cmap' table directly.
//
// Only the table directory and the character-map subtables are parsed.
// Every Unicode-flavored subtable is read and the results are unioned:
//   - platform 0 (Unicode), any encoding
//   - platform 3 (Windows), encoding 1 (BMP) and 10 (full repertoire)
//
// Other platforms (Macintosh, Windows symbol, legacy CJK encodings) are
// ignored. Code points mapped to glyph 0 (.notdef) are not covered.
package fontcov

import (
	"encoding/binary"
	"fmt"
	"sort"
)

// maxCodePoint is the largest Unicode scalar value.
const maxCodePoint = 0x10FFFF

// MalformedFontError reports a font whose table directory or character
// map cannot be used.
type MalformedFontError struct {
	Reason string
}

func (e *MalformedFontError) Error() string {
	return "malformed font: " + e.Reason
}

func malformed(format string, args ...any) error {
	return &MalformedFontError{Reason: fmt.Sprintf(format, args...)}
}

// Coverage is an immutable set of Unicode code points.
type Coverage struct {
	points map[uint32]struct{}
}

// Has reports whether cp is covered.
func (c Coverage) Has(cp uint32) bool {
	_, ok := c.points[cp]
	return ok
}

// Len returns the number of covered code points.
func (c Coverage) Len() int { return len(c.points) }

// ContainsAll reports whether every rune in text is covered.
func (c Coverage) ContainsAll(text string) bool {
	for _, r := range text {
		if !c.Has(uint32(r)) {
			return false
		}
	}
	return true
}

// Points returns the covered code points in ascending order.
func (c Coverage) Points() []uint32 {
	out := make([]uint32, 0, len(c.points))
	for cp := range c.points {
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Extract parses fontData and returns the union of all Unicode cmap
// subtables. Font collections (ttcf) use their first face.
func Extract(fontData []byte) (Coverage, error) {
	cmap, err := findTable(fontData, "cmap")
	if err != nil {
		return Coverage{}, err
	}

	if len(cmap) < 4 {
		return Coverage{}, malformed("cmap header truncated")
	}
	numTables := int(binary.BigEndian.Uint16(cmap[2:]))
	if len(cmap) < 4+numTables*8 {
		return Coverage{}, malformed("cmap has %d encoding records but only %d bytes", numTables, len(cmap))
	}

	cov := Coverage{points: make(map[uint32]struct{})}
	seen := map[uint32]bool{}
	usable := 0

	for i := 0; i < numTables; i++ {
		rec := cmap[4+i*8:]
		platformID := binary.BigEndian.Uint16(rec[0:])
		encodingID := binary.BigEndian.Uint16(rec[2:])
		offset := binary.BigEndian.Uint32(rec[4:])

		if !isUnicode(platformID, encodingID) {
			continue
		}
		// Several records commonly share one subtable.
		if seen[offset] {
			usable++
			continue
		}
		seen[offset] = true

		if int64(offset) >= int64(len(cmap)) {
			return Coverage{}, malformed("cmap subtable offset %d out of range", offset)
		}
		ok, err := parseSubtable(cmap[offset:], cov.points)
		if err != nil {
			return Coverage{}, err
		}
		if ok {
			usable++
		}
	}

	if usable == 0 {
		return Coverage{}, malformed("no usable Unicode cmap subtable")
	}
	return cov, nil
}

func isUnicode(platformID, encodingID uint16) bool {
	switch platformID {
	case 0:
		return true
	case 3:
		return encodingID == 1 || encodingID == 10
	}
	return false
}

// findTable walks the sfnt table directory and returns the named table.
func findTable(data []byte, tag string) ([]byte, error) {
	if len(data) < 12 {
		return nil, malformed("file too short for table directory")
	}

	base := 0
	switch string(data[0:4]) {
	case "ttcf":
		if len(data) < 16 {
			return nil, malformed("collection header truncated")
		}
		if binary.BigEndian.Uint32(data[8:]) == 0 {
			return nil, malformed("empty font collection")
		}
		base = int(binary.BigEndian.Uint32(data[12:]))
		if base+12 > len(data) {
			return nil, malformed("collection face offset %d out of range", base)
		}
	case "\x00\x01\x00\x00", "OTTO", "true":
	default:
		return nil, malformed("unknown sfnt version %q", data[0:4])
	}

	numTables := int(binary.BigEndian.Uint16(data[base+4:]))
	dir := data[base+12:]
	if len(dir) < numTables*16 {
		return nil, malformed("table directory truncated")
	}

	for i := 0; i < numTables; i++ {
		rec := dir[i*16:]
		if string(rec[0:4]) != tag {
			continue
		}
		offset := int64(binary.BigEndian.Uint32(rec[8:]))
		length := int64(binary.BigEndian.Uint32(rec[12:]))
		if offset+length > int64(len(data)) {
			return nil, malformed("%s table [%d,+%d) exceeds file size %d", tag, offset, length, len(data))
		}
		return data[offset : offset+length], nil
	}
	return nil, malformed("%s table not found", tag)
}

// parseSubtable adds the code points of one subtable to dst. It returns
// false for formats that carry no code point to glyph mapping.
func parseSubtable(sub []byte, dst map[uint32]struct{}) (bool, error) {
	if len(sub) < 2 {
		return false, malformed("cmap subtable truncated")
	}
	format := binary.BigEndian.Uint16(sub)
	switch format {
	case 0:
		return true, parseFormat0(sub, dst)
	case 4:
		return true, parseFormat4(sub, dst)
	case 6:
		return true, parseFormat6(sub, dst)
	case 10:
		return true, parseFormat10(sub, dst)
	case 12, 13:
		return true, parseSegmented(sub, dst, format == 13)
	default:
		// Format 14 holds variation sequences; 2 and 8 are mixed 8/16-bit
		// CJK encodings never used for Unicode.
		return false, nil
	}
}

// parseFormat0 reads the byte encoding table: 256 one-byte glyph ids
// for code points 0-255.
func parseFormat0(sub []byte, dst map[uint32]struct{}) error {
	if len(sub) < 6+256 {
		return malformed("format 0 glyph array truncated")
	}
	for c, glyph := range sub[6 : 6+256] {
		if glyph != 0 {
			dst[uint32(c)] = struct{}{}
		}
	}
	return nil
}

// parseFormat4 reads the segment mapping to delta values subtable.
func parseFormat4(sub []byte, dst map[uint32]struct{}) error {
	if len(sub) < 14 {
		return malformed("format 4 header truncated")
	}
	segCount := int(binary.BigEndian.Uint16(sub[6:])) / 2
	endCodes := 14
	startCodes := endCodes + segCount*2 + 2 // reservedPad
	idDeltas := startCodes + segCount*2
	idRangeOffsets := idDeltas + segCount*2
	if len(sub) < idRangeOffsets+segCount*2 {
		return malformed("format 4 segment arrays truncated (segCount=%d)", segCount)
	}

	for s := 0; s < segCount; s++ {
		end := binary.BigEndian.Uint16(sub[endCodes+s*2:])
		start := binary.BigEndian.Uint16(sub[startCodes+s*2:])
		delta := binary.BigEndian.Uint16(sub[idDeltas+s*2:])
		rangeOffsetPos := idRangeOffsets + s*2
		rangeOffset := int(binary.BigEndian.Uint16(sub[rangeOffsetPos:]))
		if start > end {
			continue
		}

		for c := uint32(start); c <= uint32(end); c++ {
			var glyph uint16
			if rangeOffset == 0 {
				glyph = uint16(c) + delta
			} else {
				addr := rangeOffsetPos + rangeOffset + 2*int(c-uint32(start))
				if addr+2 > len(sub) {
					return malformed("format 4 glyph index address %d out of range", addr)
				}
				glyph = binary.BigEndian.Uint16(sub[addr:])
				if glyph != 0 {
					glyph += delta
				}
			}
			if glyph != 0 {
				dst[c] = struct{}{}
			}
		}
	}
	return nil
}

// parseFormat6 reads the trimmed table mapping subtable.
func parseFormat6(sub []byte, dst map[uint32]struct{}) error {
	if len(sub) < 10 {
		return malformed("format 6 header truncated")
	}
	first := uint32(binary.BigEndian.Uint16(sub[6:]))
	count := int(binary.BigEndian.Uint16(sub[8:]))
	if len(sub) < 10+count*2 {
		return malformed("format 6 glyph array truncated")
	}
	for i := 0; i < count; i++ {
		if binary.BigEndian.Uint16(sub[10+i*2:]) != 0 {
			dst[first+uint32(i)] = struct{}{}
		}
	}
	return nil
}

// parseFormat10 reads the trimmed array subtable.
func parseFormat10(sub []byte, dst map[uint32]struct{}) error {
	if len(sub) < 20 {
		return malformed("format 10 header truncated")
	}
	first := binary.BigEndian.Uint32(sub[12:])
	count := int64(binary.BigEndian.Uint32(sub[16:]))
	if int64(len(sub)) < 20+count*2 {
		return malformed("format 10 glyph array truncated")
	}
	for i := int64(0); i < count; i++ {
		cp := first + uint32(i)
		if cp > maxCodePoint {
			break
		}
		if binary.BigEndian.Uint16(sub[20+i*2:]) != 0 {
			dst[cp] = struct{}{}
		}
	}
	return nil
}

// parseSegmented reads format 12 (segmented coverage) and format 13
// (many-to-one range mappings). They share one layout.
func parseSegmented(sub []byte, dst map[uint32]struct{}, manyToOne bool) error {
	if len(sub) < 16 {
		return malformed("format 12/13 header truncated")
	}
	numGroups := int64(binary.BigEndian.Uint32(sub[12:]))
	if int64(len(sub)) < 16+numGroups*12 {
		return malformed("format 12/13 groups truncated (numGroups=%d)", numGroups)
	}

	for g := int64(0); g < numGroups; g++ {
		rec := sub[16+g*12:]
		start := binary.BigEndian.Uint32(rec[0:])
		end := binary.BigEndian.Uint32(rec[4:])
		glyph := binary.BigEndian.Uint32(rec[8:])
		if start > end || start > maxCodePoint {
			continue
		}
		if end > maxCodePoint {
			end = maxCodePoint
		}
		for c := start; c <= end; c++ {
			id := glyph
			if !manyToOne {
				id = glyph + (c - start)
			}
			if id != 0 {
				dst[c] = struct{}{}
			}
		}
	}
	return nil
}
