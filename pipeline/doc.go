// Package pipeline turns discovered city guides into regional guides.
//
// A run moves through fixed steps:
//
//  1. Requested alpha-3 codes are validated against the country table.
//     "ALL" selects the whole table. No valid code aborts the run.
//  2. Guides are discovered. No guide aborts the run before any graph query.
//  3. Each guide's search string is resolved to a city resource.
//  4. Each city resource is resolved to its country resource.
//  5. Surviving guides are grouped by country resource (Regroup).
//  6. Each group's country resource is resolved to an alpha-3 code. Groups
//     that cannot be coded, or that were not requested, are skipped; the
//     rest are assembled by guide.Builder.
//  7. Requested codes that produced no guide are reported as missing. The
//     run still succeeds.
//
// Steps 3 and 4 run on a bounded number of goroutines. Results are kept in
// discovery order, so grouping is independent of completion order and a run
// with any worker count yields the same guides.
//
// Failures after step 2 never abort the run: the guide or group concerned is
// logged at ERROR with a reason (no_binding, query_failed, invalid) and left
// out.
package pipeline
