package image2c

import (
	"regexp"
)

// Options controls the shape of one exported array.
type Options struct {
	// ArrayName is the C identifier, sanitized before use.
	ArrayName string
	// SourceBase and SourceExt only appear in the header comment.
	SourceBase string
	SourceExt  string
	// LittleEndian keeps 16-bit words in host order; otherwise each word
	// is byte-swapped before it is written.
	LittleEndian bool
	// Flash places the array in program memory with GSLC_PMEM.
	Flash bool
	// TransparentChange is recorded but does not alter the pixel data.
	TransparentChange bool
	// Depth forces 1 or 16 bits per pixel. Zero picks 1 bit for images
	// with fewer than three colors and 16 bits otherwise.
	Depth int
}

func DefaultOptions() Options {
	return Options{
		LittleEndian: true,
		Flash:        true,
	}
}

var nonIdent = regexp.MustCompile(`[^A-Za-z0-9()\[\]]`)

// SanitizeIdentifier replaces every character outside [A-Za-z0-9()[]]
// with an underscore.
func SanitizeIdentifier(s string) string {
	return nonIdent.ReplaceAllString(s, "_")
}
