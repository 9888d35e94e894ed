// Package country holds the ISO 3166 alpha-3 code table and the validation
// of a caller's requested codes.
//
// Membership is an explicit lookup returning found/not-found; no code path
// relies on a failed lookup raising an error.
package country
