// Package sparql is the only component of the resolver that touches the
// network. It sends SELECT queries to a SPARQL 1.1 protocol endpoint and
// decodes the JSON results format into typed rows.
//
// Resolver code never handles positional tuples directly; it reads results
// through Row and First:
//
//	rows, err := client.Select(ctx, q)
//	if err != nil {
//	    return err // transient, wraps errors.ErrQueryFailed
//	}
//	term, ok := sparql.First(rows)
//
// An empty result set is a successful query. Timeouts, non-2xx responses and
// undecodable bodies are transport failures.
package sparql
