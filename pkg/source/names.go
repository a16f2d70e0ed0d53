package source

import (
	"path/filepath"
	"strings"

	"image2c/pkg/image2c"
)

// inputExts are searched in this order; the first one found anywhere in
// the file name splits it.
var inputExts = []string{".bmp", ".png", ".jpg", ".gif"}

// NoExt stands in for the extension of a file name carrying none of the
// known image extensions.
const NoExt = " "

// SplitName cuts a file name at the first known image extension. The
// extension keeps everything after the cut.
func SplitName(file string) (base, ext string) {
	for _, e := range inputExts {
		if n := strings.Index(file, e); n >= 0 {
			return file[:n], file[n:]
		}
	}
	return file, NoExt
}

// Names are the strings derived from one input for its export.
type Names struct {
	// Base and Ext split the input file name.
	Base string
	Ext  string
	// Output is the path of the generated .c file.
	Output string
	// Array is the sanitized C identifier.
	Array string
}

// OutputPath joins dir and name, appending ".c" unless name already ends
// with it in any case.
func OutputPath(dir, name string) string {
	if !strings.HasSuffix(strings.ToLower(name), ".c") {
		name += ".c"
	}
	if dir == "" {
		return name
	}
	return filepath.Join(dir, name)
}

// ArrayName derives the identifier of an output file name.
func ArrayName(output string) string {
	name := filepath.Base(output)
	if strings.HasSuffix(strings.ToLower(name), ".c") {
		name = name[:len(name)-2]
	}
	return image2c.SanitizeIdentifier(name)
}

// BuildNames derives the export names of the input file. Empty output
// and array override the defaults, the input base name in dir and its
// sanitized form.
func BuildNames(file, dir, output, array string) Names {
	n := Names{}
	n.Base, n.Ext = SplitName(filepath.Base(file))

	if output == "" {
		output = n.Base
	}
	n.Output = OutputPath(dir, output)

	if array == "" {
		n.Array = ArrayName(n.Output)
	} else {
		n.Array = image2c.SanitizeIdentifier(array)
	}
	return n
}

// Options fills the naming fields of o.
func (n Names) Options(o image2c.Options) image2c.Options {
	o.ArrayName = n.Array
	o.SourceBase = n.Base
	o.SourceExt = n.Ext
	return o
}
