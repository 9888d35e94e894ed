// Package memo memoizes referentially transparent lookups.
//
// A Memo maps a Key (operation name plus arguments) to a completed result
// held in a cache.Cache. Duplicate concurrent calls are collapsed with
// singleflight, so a lookup issued by many goroutines at once costs one
// underlying computation. In-flight calls are never reported as hits.
//
// Results can be written through to a Store and loaded back with Warm at
// startup, amortizing network cost across runs:
//
//	store, _ := memo.OpenSQLite("regions-memo.db")
//	m := memo.New[resolver.Binding](c, memo.WithStore[resolver.Binding](store))
//	if _, err := m.Warm(ctx); err != nil { ... }
package memo
