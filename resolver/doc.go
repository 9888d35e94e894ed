// Package resolver walks a city guide to its country through the knowledge
// graph.
//
// Four lookups are exposed, each a pure function of its argument and the
// endpoint:
//
//	city search string  -> city resource      (CityResource)
//	any resource        -> country resource   (CountryOf)
//	country resource    -> ISO alpha-3 code   (Alpha3Of)
//	ISO alpha-3 code    -> country resource   (CountryResourceOf)
//
// The answer to every lookup is the first column of the first result row.
// Zero rows is reported as errors.ErrNoBinding; a failed query as a
// transient error wrapping errors.ErrQueryFailed. The resolver does not log;
// callers decide the severity of each outcome.
//
// Results are memoized through pkg/memo, injected at construction, so
// repeated lookups cost one network round trip and concurrent duplicates
// share one in-flight query.
package resolver
