// Package output writes request outcomes to the console or to files
// and prints run summaries.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/rawnet/httpc/packages/executor"
)

// Emit writes the outcome to w: the header block alone in headers-only
// mode, otherwise the full raw response (header block, blank line,
// body).
func Emit(w io.Writer, out *executor.Outcome, headersOnly bool) error {
	if _, err := io.WriteString(w, out.HeaderBlock); err != nil {
		return err
	}
	if headersOnly {
		return nil
	}
	if _, err := io.WriteString(w, "\r\n\r\n"); err != nil {
		return err
	}
	_, err := w.Write(out.Body)
	return err
}

// EmitFile writes the outcome to path, truncating any existing file.
func EmitFile(path string, out *executor.Outcome, headersOnly bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	if err := Emit(f, out, headersOnly); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}
	return nil
}
