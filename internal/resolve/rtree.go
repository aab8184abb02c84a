package resolve

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// entry is one polygon of one feature.
type entry struct {
	bound   orb.Bound
	feature int
	polygon int
}

type node struct {
	bound    orb.Bound
	leaf     bool
	entries  []entry
	children []*node
}

// buildTree bulk-loads a read-only R-tree with sort-tile-recursive packing.
func buildTree(entries []entry, maxEntries int) *node {
	if len(entries) == 0 {
		return nil
	}
	nodes := packEntries(entries, maxEntries)
	for len(nodes) > 1 {
		nodes = packNodes(nodes, maxEntries)
	}
	return nodes[0]
}

func packEntries(entries []entry, maxEntries int) []*node {
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].bound.Min[0] < entries[j].bound.Min[0] })
	var nodes []*node
	for _, slice := range tiles(len(entries), maxEntries) {
		part := append([]entry(nil), entries[slice[0]:slice[1]]...)
		sort.SliceStable(part, func(i, j int) bool { return part[i].bound.Min[1] < part[j].bound.Min[1] })
		for j := 0; j < len(part); j += maxEntries {
			end := min(j+maxEntries, len(part))
			n := &node{leaf: true, entries: part[j:end]}
			n.bound = n.entries[0].bound
			for _, e := range n.entries[1:] {
				n.bound = n.bound.Union(e.bound)
			}
			nodes = append(nodes, n)
		}
	}
	return nodes
}

func packNodes(children []*node, maxEntries int) []*node {
	if len(children) <= maxEntries {
		return []*node{parentOf(children)}
	}
	sort.SliceStable(children, func(i, j int) bool { return children[i].bound.Min[0] < children[j].bound.Min[0] })
	var parents []*node
	for _, slice := range tiles(len(children), maxEntries) {
		part := append([]*node(nil), children[slice[0]:slice[1]]...)
		sort.SliceStable(part, func(i, j int) bool { return part[i].bound.Min[1] < part[j].bound.Min[1] })
		for j := 0; j < len(part); j += maxEntries {
			parents = append(parents, parentOf(part[j:min(j+maxEntries, len(part))]))
		}
	}
	return parents
}

func parentOf(children []*node) *node {
	p := &node{children: children, bound: children[0].bound}
	for _, c := range children[1:] {
		p.bound = p.bound.Union(c.bound)
	}
	return p
}

// tiles splits n items into vertical slices of the STR layout.
func tiles(n, maxEntries int) [][2]int {
	nodeCount := int(math.Ceil(float64(n) / float64(maxEntries)))
	sliceCount := max(1, int(math.Ceil(math.Sqrt(float64(nodeCount)))))
	capacity := int(math.Ceil(float64(n) / float64(sliceCount)))
	var out [][2]int
	for i := 0; i < n; i += capacity {
		out = append(out, [2]int{i, min(i+capacity, n)})
	}
	return out
}

// search appends every entry whose bound contains p.
func (n *node) search(p orb.Point, out []entry) []entry {
	if n == nil || !n.bound.Contains(p) {
		return out
	}
	if n.leaf {
		for _, e := range n.entries {
			if e.bound.Contains(p) {
				out = append(out, e)
			}
		}
		return out
	}
	for _, c := range n.children {
		out = c.search(p, out)
	}
	return out
}
