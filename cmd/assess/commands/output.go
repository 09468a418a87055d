package commands

import (
	"fmt"
	"io"
	"os"
)

// writeOutput writes body to path, or to w when path is empty or "-".
func writeOutput(w io.Writer, path string, body []byte) error {
	if path == "" || path == "-" {
		if _, err := w.Write(body); err != nil {
			return err
		}
		_, err := fmt.Fprintln(w)
		return err
	}
	return os.WriteFile(path, body, 0o644)
}
