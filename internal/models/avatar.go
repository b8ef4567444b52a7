package models

import (
	"fmt"
	"strconv"
	"strings"
)

var letterColors = map[byte]string{
	'a': "#FF6B6B", 'b': "#4ECDC4", 'c': "#45B7D1", 'd': "#96CEB4",
	'e': "#FFEAA7", 'f': "#DDA0DD", 'g': "#98D8C8", 'h': "#F7DC6F",
	'i': "#BB8FCE", 'j': "#85C1E9", 'k': "#F8C471", 'l': "#82E0AA",
	'm': "#F1948A", 'n': "#85C1E9", 'o': "#D7BDE2", 'p': "#A9DFBF",
	'q': "#F9E79F", 'r': "#FADBD8", 's': "#D5DBDB", 't': "#AED6F1",
	'u': "#A3E4D7", 'v': "#D2B4DE", 'w': "#F4D03F", 'x': "#EC7063",
	'y': "#58D68D", 'z': "#5DADE2",
}

// EmailColor maps the first character of email to a hex color. Letters use a
// fixed palette, digits derive a color from their code point.
func EmailColor(email string) string {
	if email == "" {
		return DefaultAvatarColor1
	}
	first := strings.ToLower(email[:1])[0]
	if first >= '0' && first <= '9' {
		v := int(first)
		return fmt.Sprintf("#%02X%02X%02X", v*17%256, v*23%256, v*31%256)
	}
	if c, ok := letterColors[first]; ok {
		return c
	}
	return DefaultAvatarColor1
}

// ComplementaryColor inverts hex and pulls the result back toward mid
// brightness.
func ComplementaryColor(hex string) string {
	raw, ok := strings.CutPrefix(hex, "#")
	if !ok || len(raw) != 6 {
		return DefaultAvatarColor2
	}
	rgb, err := strconv.ParseUint(raw, 16, 32)
	if err != nil {
		return DefaultAvatarColor2
	}
	r, g, b := 255-int(rgb>>16&0xFF), 255-int(rgb>>8&0xFF), 255-int(rgb&0xFF)

	switch brightness := float64(r+g+b) / 3; {
	case brightness < 100:
		r, g, b = min(255, r+80), min(255, g+80), min(255, b+80)
	case brightness > 200:
		r, g, b = max(0, r-80), max(0, g-80), max(0, b-80)
	}
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// AvatarColors returns the deterministic gradient pair for an email.
func AvatarColors(email string) (string, string) {
	c1 := EmailColor(email)
	return c1, ComplementaryColor(c1)
}
