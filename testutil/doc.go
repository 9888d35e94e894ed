// Package testutil provides in-memory collaborators for pipeline tests.
//
// # Mock Implementations
//
// MockGateway - In-memory SPARQL gateway:
//   - Answers queries by fragment match, zero rows otherwise
//   - Helpers (City, Country, Alpha3, CountryOfAlpha3) speak the resolver's
//     query shapes so tests describe a graph, not query text
//   - Records every query for call-count assertions
//   - Optional per-query delay for cancellation and concurrency tests
//
// MockDiscovery - Guide discovery over a fixed list of files and search
// strings, in registration order.
//
// MockFOISource - Facility source recording every requested code.
//
// LogCapture - slog.Handler keeping records in memory so tests can assert on
// levels and structured attributes.
//
// # Example
//
//	gw := testutil.NewMockGateway().
//	    City("Montreal", "http://dbpedia.org/resource/Montreal").
//	    Country("http://dbpedia.org/resource/Montreal", "http://dbpedia.org/resource/Canada").
//	    Alpha3("http://dbpedia.org/resource/Canada", "CAN")
//	logger, logs := testutil.NewLogCapture()
//
// All mocks are safe for concurrent use.
package testutil
