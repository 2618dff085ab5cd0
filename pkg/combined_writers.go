package pkg

import (
	"io"

	"go.uber.org/multierr"
)

// CombinedWriter tees every record to all of its writers, e.g. stdout and the rotated log file.
// A failing writer does not keep the record from the others.
type CombinedWriter struct {
	writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	cw := &CombinedWriter{}
	for _, w := range writers {
		if w != nil {
			cw.writers = append(cw.writers, w)
		}
	}
	return cw
}

func (cw *CombinedWriter) Len() int {
	return len(cw.writers)
}

// Write reports the record as written when at least one writer took all of it.
// Errors from the remaining writers are combined into err. Without writers, records are discarded.
func (cw *CombinedWriter) Write(p []byte) (int, error) {
	if len(cw.writers) == 0 {
		return len(p), nil
	}

	var errs error
	delivered := false
	for _, w := range cw.writers {
		n, err := w.Write(p)
		if err == nil && n < len(p) {
			err = io.ErrShortWrite
		}
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		delivered = true
	}

	if !delivered {
		return 0, errs
	}
	return len(p), errs
}
