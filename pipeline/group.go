package pipeline

import (
	"github.com/jopela/regions/guide"
	"github.com/jopela/regions/resolver"
)

// Pair is a guide together with the country resource it resolved to.
type Pair struct {
	File    guide.File
	Country resolver.Resource
}

// Group holds the guides sharing one country resource, in input order.
type Group struct {
	Key     resolver.Resource
	Members []guide.File
}

// Regroup buckets pairs by country resource in a single pass.
//
// Groups are returned in order of first appearance and members keep their
// input order. Repeated identical pairs are kept: a file listed twice for
// the same resource appears twice in its group.
func Regroup(pairs []Pair) []Group {
	index := make(map[resolver.Resource]int)
	groups := make([]Group, 0)
	for _, p := range pairs {
		i, ok := index[p.Country]
		if !ok {
			i = len(groups)
			index[p.Country] = i
			groups = append(groups, Group{Key: p.Country})
		}
		groups[i].Members = append(groups[i].Members, p.File)
	}
	return groups
}
