package input

import (
	"fmt"
	"strings"
)

// FormatHex renders a keyboard read as four groups of four uppercase hex
// bytes, dotted within a group and colon separated between groups:
//
//	1B.5B.41.00:00.00.00.00:00.00.00.00:00.00.00.00
func FormatHex(buf [ReadSize]byte) string {
	var sb strings.Builder
	sb.Grow(ReadSize * 3)
	for i, b := range buf {
		switch {
		case i == 0:
		case i%4 == 0:
			sb.WriteByte(':')
		default:
			sb.WriteByte('.')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	return sb.String()
}
