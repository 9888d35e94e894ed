package testutil

import (
	"context"
	"sync"

	"github.com/jopela/regions/errors"
	"github.com/jopela/regions/foi"
	"github.com/jopela/regions/guide"
)

// MockDiscovery is an in-memory guide.Discovery.
// Thread-safe for concurrent use from multiple goroutines.
type MockDiscovery struct {
	mu        sync.Mutex
	files     []guide.File
	searches  map[string]string
	listErr   error
	listCalls int
}

var _ guide.Discovery = (*MockDiscovery)(nil)

// NewMockDiscovery creates an empty mock discovery.
func NewMockDiscovery() *MockDiscovery {
	return &MockDiscovery{searches: make(map[string]string)}
}

// Add registers a guide file and its search string, in discovery order.
func (d *MockDiscovery) Add(path, search string) *MockDiscovery {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.files = append(d.files, guide.File{Path: path})
	d.searches[path] = search
	return d
}

// AddUnreadable registers a guide file whose search string cannot be read.
func (d *MockDiscovery) AddUnreadable(path string) *MockDiscovery {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.files = append(d.files, guide.File{Path: path})
	return d
}

// FailList makes List return err.
func (d *MockDiscovery) FailList(err error) *MockDiscovery {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listErr = err
	return d
}

// List implements guide.Discovery.
func (d *MockDiscovery) List(context.Context) ([]guide.File, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listCalls++
	if d.listErr != nil {
		return nil, d.listErr
	}
	out := make([]guide.File, len(d.files))
	copy(out, d.files)
	return out, nil
}

// SearchString implements guide.Discovery.
func (d *MockDiscovery) SearchString(_ context.Context, file guide.File) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.searches[file.Path]
	if !ok {
		return "", errors.WrapInvalid(errors.ErrInvalidData, "MockDiscovery", "SearchString", "read "+file.Path)
	}
	return s, nil
}

// ListCalls returns how many times List was called.
func (d *MockDiscovery) ListCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.listCalls
}

// MockFOISource is an in-memory foi.Source that records requested codes.
type MockFOISource struct {
	mu         sync.Mutex
	facilities map[string][]foi.Facility
	requested  []string
}

var _ foi.Source = (*MockFOISource)(nil)

// NewMockFOISource creates an empty mock source.
func NewMockFOISource() *MockFOISource {
	return &MockFOISource{facilities: make(map[string][]foi.Facility)}
}

// Set registers the facilities of a country.
func (s *MockFOISource) Set(alpha3 string, facilities ...foi.Facility) *MockFOISource {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facilities[alpha3] = facilities
	return s
}

// Fetch implements foi.Source.
func (s *MockFOISource) Fetch(_ context.Context, alpha3 string) []foi.Facility {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requested = append(s.requested, alpha3)
	out := make([]foi.Facility, len(s.facilities[alpha3]))
	copy(out, s.facilities[alpha3])
	return out
}

// Requested returns every code passed to Fetch, in call order.
func (s *MockFOISource) Requested() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.requested))
	copy(out, s.requested)
	return out
}
