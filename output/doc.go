// Package output persists regional guides.
//
// Every sink writes one indented JSON document per guide, named after the
// guide's alpha-3 code:
//   - FileSink: <target>/<ALPHA3>.json on the local filesystem
//   - ObjectSink: <prefix>/<ALPHA3>.json in an S3-compatible bucket (MinIO)
//
// Multi fans a batch out to several sinks. Writing the same guides twice
// produces the same documents.
package output
