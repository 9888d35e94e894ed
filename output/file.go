package output

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/jopela/regions/errors"
	"github.com/jopela/regions/guide"
)

// FileSink writes each guide to <Directory>/<ALPHA3>.json, replacing any
// previous file.
type FileSink struct {
	directory string
	logger    *slog.Logger
}

// NewFileSink creates a FileSink rooted at directory.
func NewFileSink(directory string, logger *slog.Logger) *FileSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSink{directory: directory, logger: logger}
}

// Write implements Sink.
func (f *FileSink) Write(ctx context.Context, guides []guide.Regional) error {
	if err := os.MkdirAll(f.directory, 0755); err != nil {
		return errors.WrapFatal(err, "FileSink", "Write", "create directory")
	}

	for _, g := range guides {
		if err := ctx.Err(); err != nil {
			return err
		}

		data, err := Encode(g)
		if err != nil {
			return errors.WrapInvalid(err, "FileSink", "Write", "encode "+g.Code.Alpha3)
		}

		path := filepath.Join(f.directory, Name(g))
		if err := writeFile(path, data); err != nil {
			return errors.WrapTransient(err, "FileSink", "Write", "write "+path)
		}
		f.logger.Info("Regional guide written", "alpha3", g.Code.Alpha3, "path", path)
	}
	return nil
}

// writeFile replaces path through a temporary file in the same directory so
// a reader never sees a partial guide.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".regional-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
