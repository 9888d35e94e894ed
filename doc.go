// Package regions builds per-country regional guides from a tree of city
// guides, resolving each city to its country through a SPARQL knowledge
// graph.
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│          guide.FSDiscovery          │  result.json files,
//	│     (list guides, search strings)   │  discovery order
//	└─────────────────────────────────────┘
//	           ↓ feeds
//	┌─────────────────────────────────────┐
//	│        pipeline.Orchestrator        │  validate codes, resolve,
//	│  (bounded fan-out, Regroup, match)  │  group, match, reconcile
//	└─────────────────────────────────────┘
//	           ↓ asks
//	┌─────────────────────────────────────┐
//	│          resolver.Resolver          │  city, country, alpha-3
//	│      (memo.Memo single-flight)      │  lookups, memoized
//	└─────────────────────────────────────┘
//	           ↓ queries
//	┌─────────────────────────────────────┐
//	│            sparql.Client            │  SPARQL 1.1 protocol,
//	│    (rate limit, timeout, metrics)   │  JSON results
//	└─────────────────────────────────────┘
//
// Matched groups are assembled by guide.Builder, which names the country
// from the country table and attaches facilities from the foi package. The
// resulting guide.Regional values are handed to an output.Sink.
//
// # Failure Policy
//
// A run aborts only when no requested country code is valid
// (errors.ErrNoCountries) or no guide is discovered (errors.ErrNoGuides).
// Everything else is best effort: a guide or country group that cannot be
// resolved is logged with a reason and left out, and requested countries
// that produced nothing are reported as missing while the run still
// succeeds.
//
// # Packages
//
//   - sparql: SPARQL client, typed rows, first-binding rule
//   - pkg/cache, pkg/memo: memoization with optional SQLite or NATS KV persistence
//   - resolver: the four graph lookups and the Resource type
//   - guide: discovery and regional guide assembly
//   - pipeline: the run state machine
//   - country: ISO 3166 alpha-3 table
//   - foi: facilities of interest from PostGIS
//   - output: file and object storage sinks
//   - config, metric, errors: ambient configuration, Prometheus metrics, classified errors
//   - cmd/regions: the command
package regions
