package files

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// DefaultArchivePatterns are used when UnzipOptions.Patterns is empty.
var DefaultArchivePatterns = []string{"*.zip"}

type UnzipOptions struct {
	Patterns []string
	// Dry reports the archives without extracting them.
	Dry    bool
	Out    io.Writer
	Logger *zap.Logger
}

// UnzipResult summarises an UnzipAll run.
type UnzipResult struct {
	Archives  []string
	Extracted int
	Failed    int
}

// UnzipAll extracts every matching archive under folder next to itself. A
// failing archive does not stop the batch; all failures are returned
// together.
func UnzipAll(folder string, opts UnzipOptions) (UnzipResult, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	patterns := opts.Patterns
	if len(patterns) == 0 {
		patterns = DefaultArchivePatterns
	}

	archives, err := Search(folder, SearchOptions{Patterns: patterns})
	if err != nil {
		return UnzipResult{}, err
	}
	res := UnzipResult{Archives: archives}

	if opts.Dry {
		for _, a := range archives {
			fmt.Fprintf(out, "%s (%s)\n", a, fileSize(a))
		}
		fmt.Fprintf(out, "%d archive(s) found\n", len(archives))
		return res, nil
	}

	var errs error
	for _, a := range archives {
		n, err := Extract(a, filepath.Dir(a))
		if err != nil {
			logger.Warn("extraction failed", zap.String("archive", a), zap.Error(err))
			errs = multierr.Append(errs, err)
			res.Failed++
			continue
		}
		logger.Info("archive extracted", zap.String("archive", a), zap.Int("files", n))
		fmt.Fprintf(out, "extracted %s (%d files)\n", a, n)
		res.Extracted++
	}
	return res, errs
}

func fileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "?"
	}
	return humanize.Bytes(uint64(info.Size()))
}
