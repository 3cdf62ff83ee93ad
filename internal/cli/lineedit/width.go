package lineedit

import "github.com/rivo/uniseg"

// displayWidth returns the number of terminal columns s occupies,
// counting East Asian wide characters as two and combining marks as zero.
func displayWidth(s string) int {
	return uniseg.StringWidth(s)
}
