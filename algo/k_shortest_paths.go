package algo

import "sort"

// KShortestPaths implements a simplified Yen's algorithm: rather than
// Yen's full deviation-path search, it sorts the simple paths AllPaths
// enumerates (each is emitted once, so there is nothing to deduplicate)
// and takes the k shortest by hop count, ties broken by lower weight. This
// is exact for small bounded graphs (the intended embedded-database scale)
// and avoids maintaining Yen's candidate heap for a marginal correctness
// gain outside that scale.
func KShortestPaths(g GraphView, s, t uint64, k, maxDepth int) []*Path {
	all := AllPaths(g, s, t, maxDepth)
	sort.Slice(all, func(i, j int) bool {
		if len(all[i].Edges) != len(all[j].Edges) {
			return len(all[i].Edges) < len(all[j].Edges)
		}
		return all[i].Weight < all[j].Weight
	})
	if len(all) > k {
		all = all[:k]
	}
	return all
}
