// Package letter separates the appeal letter from the follow-up guidance
// and writes both to disk.
package letter

import "strings"

// Markers that open the guidance section, in priority order.
var Markers = []string{
	"**Next Steps:**",
	"**Next Steps**",
	"## Next Steps",
	"### Next Steps",
	"**Final Notes:**",
	"**Final Notes**",
	"## Final Notes",
}

// Split cuts final at the first marker of Markers that occurs in it.
// The body is trimmed and the guidance starts with the marker. Without a
// marker the whole text is the body and guidance is empty.
func Split(final string) (body, guidance string) {
	for _, marker := range Markers {
		if i := strings.Index(final, marker); i >= 0 {
			return strings.TrimSpace(final[:i]), final[i:]
		}
	}
	return final, ""
}
