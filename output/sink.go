package output

import (
	"context"
	"encoding/json"
	stderrors "errors"

	"github.com/jopela/regions/guide"
)

// Sink persists regional guides.
type Sink interface {
	Write(ctx context.Context, guides []guide.Regional) error
}

// Multi writes to every sink in turn. All sinks are attempted; their
// errors are joined.
type Multi []Sink

// Write implements Sink.
func (m Multi) Write(ctx context.Context, guides []guide.Regional) error {
	var errs []error
	for _, s := range m {
		if err := s.Write(ctx, guides); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}

// Name returns the document name of a guide: <ALPHA3>.json.
func Name(g guide.Regional) string {
	return g.Code.Alpha3 + ".json"
}

// Encode renders a guide as indented JSON followed by a newline.
func Encode(g guide.Regional) ([]byte, error) {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
