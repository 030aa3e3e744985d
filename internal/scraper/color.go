package scraper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	rgbPattern        = regexp.MustCompile(`rgb\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*\)`)
	shortHexPattern   = regexp.MustCompile(`^#[0-9a-f]{3}$`)
	backgroundPattern = regexp.MustCompile(`(?i)background(?:-color)?\s*:\s*([^;]+)`)
)

// RGBToHex converts an "rgb(r, g, b)" color into "#rrggbb".
// It reports false when the text does not contain an rgb triplet or a
// component is outside 0-255.
func RGBToHex(color string) (string, bool) {
	m := rgbPattern.FindStringSubmatch(color)
	if m == nil {
		return "", false
	}

	var parts [3]int
	for i := range parts {
		n, err := strconv.Atoi(m[i+1])
		if err != nil || n > 255 {
			return "", false
		}
		parts[i] = n
	}
	return fmt.Sprintf("#%02x%02x%02x", parts[0], parts[1], parts[2]), true
}

// NormalizeColor turns a CSS color value into the key used to match legend
// swatches against grid cells: trimmed, lowercase, rgb() triplets converted to
// hex and short "#rgb" expanded to "#rrggbb". Values in any other form are
// returned trimmed and lowercased.
func NormalizeColor(color string) string {
	c := strings.ToLower(strings.TrimSpace(color))
	if strings.HasPrefix(c, "rgb") {
		if hex, ok := RGBToHex(c); ok {
			return hex
		}
		return c
	}
	if shortHexPattern.MatchString(c) {
		return string([]byte{'#', c[1], c[1], c[2], c[2], c[3], c[3]})
	}
	return c
}

// backgroundColor extracts the background color declared in a style attribute.
func backgroundColor(style string) (string, bool) {
	m := backgroundPattern.FindStringSubmatch(style)
	if m == nil {
		return "", false
	}
	c := NormalizeColor(m[1])
	if c == "" {
		return "", false
	}
	return c, true
}
