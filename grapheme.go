package tuiengine

import "github.com/rivo/uniseg"

// GraphemePool interns grapheme cluster strings and hands out stable IDs.
// Cells reference pool handles instead of owning strings, which keeps Cell a
// fixed-width record. The pool is append-only: handles stay valid for the
// pool's lifetime and IDs start at 1 (0 means no cluster).
type GraphemePool struct {
	clusters []string
	index    map[string]GraphemeID
}

// NewGraphemePool creates an empty pool.
func NewGraphemePool() *GraphemePool {
	return &GraphemePool{
		index: make(map[string]GraphemeID),
	}
}

// Intern returns the handle for the cluster, adding it if unseen.
func (p *GraphemePool) Intern(cluster string) GraphemeID {
	if id, ok := p.index[cluster]; ok {
		return id
	}
	p.clusters = append(p.clusters, cluster)
	id := GraphemeID(len(p.clusters))
	p.index[cluster] = id
	return id
}

// Lookup returns the cluster string for a handle, or "" for the zero handle
// or an unknown handle.
func (p *GraphemePool) Lookup(id GraphemeID) string {
	if id == 0 || int(id) > len(p.clusters) {
		return ""
	}
	return p.clusters[id-1]
}

// Len returns the number of interned clusters.
func (p *GraphemePool) Len() int {
	return len(p.clusters)
}

// Graphemes splits a string into grapheme clusters with their display widths.
// Zero-width clusters are reported with width 0 and left to the caller.
func Graphemes(s string) []GraphemeInfo {
	var out []GraphemeInfo
	state := -1
	rest := s
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		out = append(out, GraphemeInfo{
			Cluster: cluster,
			Width:   StringWidth(cluster),
		})
	}
	return out
}

// GraphemeInfo is one user-perceived character and its display width.
type GraphemeInfo struct {
	Cluster string
	Width   int
}
