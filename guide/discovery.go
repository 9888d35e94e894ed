package guide

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jopela/regions/errors"
)

// DefaultFilename is the name of a city guide file.
const DefaultFilename = "result.json"

// DefaultSearchField is the JSON path of a guide's city search string.
const DefaultSearchField = "search"

// File references one city guide on disk.
type File struct {
	Path string
}

// String implements fmt.Stringer.
func (f File) String() string {
	return f.Path
}

// MarshalText implements encoding.TextMarshaler.
func (f File) MarshalText() ([]byte, error) {
	return []byte(f.Path), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *File) UnmarshalText(text []byte) error {
	f.Path = string(text)
	return nil
}

// Discovery lists candidate guide files and reads their search strings.
type Discovery interface {
	// List returns every guide file in a stable order.
	List(ctx context.Context) ([]File, error)

	// SearchString returns the city search text stored in a guide.
	SearchString(ctx context.Context, file File) (string, error)
}

// FSDiscovery finds guide files under a directory tree.
type FSDiscovery struct {
	// Root is the directory walked for guides.
	Root string

	// Filename is the base name a guide file must have (default: DefaultFilename).
	Filename string

	// SearchField is a dotted JSON path to the search string
	// (default: DefaultSearchField).
	SearchField string

	// Logger receives warnings for parts of the tree that cannot be read
	// (default: slog.Default()).
	Logger *slog.Logger
}

var _ Discovery = FSDiscovery{}

// List walks Root in lexical order and returns every file named Filename.
// Only an unreadable Root fails the listing; any other unreadable entry is
// logged and skipped.
func (d FSDiscovery) List(ctx context.Context) ([]File, error) {
	name := d.Filename
	if name == "" {
		name = DefaultFilename
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var files []File
	err := filepath.WalkDir(d.Root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == d.Root {
				return err
			}
			logger.Warn("Skipping unreadable part of the guide tree", "path", path, "error", err)
			if entry != nil && entry.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !entry.IsDir() && entry.Name() == name {
			files = append(files, File{Path: path})
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "FSDiscovery", "List", "walk "+d.Root)
	}
	return files, nil
}

// SearchString decodes the guide and returns the string at SearchField.
func (d FSDiscovery) SearchString(_ context.Context, file File) (string, error) {
	field := d.SearchField
	if field == "" {
		field = DefaultSearchField
	}

	data, err := os.ReadFile(file.Path)
	if err != nil {
		return "", errors.WrapInvalid(err, "FSDiscovery", "SearchString", "read guide")
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", errors.WrapInvalid(errors.ErrParsingFailed, "FSDiscovery", "SearchString",
			fmt.Sprintf("decode %s: %v", file.Path, err))
	}

	value, err := lookupPath(doc, field)
	if err != nil {
		return "", errors.WrapInvalid(errors.ErrInvalidData, "FSDiscovery", "SearchString",
			fmt.Sprintf("%s in %s", err, file.Path))
	}
	return value, nil
}

func lookupPath(doc any, path string) (string, error) {
	current := doc
	for _, part := range strings.Split(path, ".") {
		obj, ok := current.(map[string]any)
		if !ok {
			return "", fmt.Errorf("field %q: parent is not an object", path)
		}
		current, ok = obj[part]
		if !ok {
			return "", fmt.Errorf("field %q not found", path)
		}
	}

	s, ok := current.(string)
	if !ok {
		return "", fmt.Errorf("field %q is not a string", path)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("field %q is empty", path)
	}
	return s, nil
}
