// Package errors provides standardized error handling for the regional guide
// pipeline.
//
// # Overview
//
// Errors fall into three classes: Transient (transport failures, timeouts),
// Invalid (bad input such as an unknown country code), and Fatal (conditions
// that abort the whole run). The classes drive logging decisions; nothing in
// the pipeline retries.
//
// # Resolution outcomes
//
// Graph lookups distinguish two ways of producing no value:
//
//   - ErrNoBinding: the query succeeded and returned zero rows.
//   - A transient error wrapping ErrQueryFailed: the query could not be
//     executed (timeout, HTTP error, undecodable response).
//
// Both exclude the item from the run; only the log entry differs.
//
//	res, err := r.CountryOf(ctx, city)
//	switch {
//	case errors.IsNoBinding(err):
//	    logger.Error("no country for resource", "resource", city)
//	case err != nil:
//	    logger.Error("country query failed", "resource", city, "error", err)
//	}
//
// # Wrapping
//
// Wrap follows "component.method: action failed: %w" and the WrapTransient,
// WrapInvalid and WrapFatal variants attach a class. All helpers support
// errors.Is and errors.As through Unwrap.
package errors
