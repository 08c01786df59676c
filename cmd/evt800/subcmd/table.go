package subcmd

import (
	"fmt"
	"io"

	"github.com/temoto/evt800/evt"
)

// PrintTable writes name/value pairs right aligned, one per line.
func PrintTable(w io.Writer, r *evt.Reading) error {
	fields := r.Fields()
	for _, name := range evt.FieldNames() {
		if _, err := fmt.Fprintf(w, "%20s%25v\n", name, fields[name]); err != nil {
			return err
		}
	}
	return nil
}
