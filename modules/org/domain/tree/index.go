package tree

import (
	"sort"

	"github.com/iota-uz/taskdesk/modules/org/domain/department"
)

// Index is a parent to children adjacency structure over a department
// snapshot. It is rebuilt from a full read, never mutated in place; a snapshot
// that is slightly stale is acceptable for authorization reads.
type Index struct {
	children map[uint][]uint
	parents  map[uint]*uint
}

func NewIndex(departments []*department.Department) *Index {
	idx := &Index{
		children: make(map[uint][]uint, len(departments)),
		parents:  make(map[uint]*uint, len(departments)),
	}
	for _, d := range departments {
		idx.parents[d.ID] = d.ParentID
		if d.ParentID != nil {
			idx.children[*d.ParentID] = append(idx.children[*d.ParentID], d.ID)
		}
	}
	for _, kids := range idx.children {
		sort.Slice(kids, func(i, j int) bool { return kids[i] < kids[j] })
	}
	return idx
}

// Contains reports whether id was present in the snapshot.
func (idx *Index) Contains(id uint) bool {
	_, ok := idx.parents[id]
	return ok
}

// Closure returns id plus every transitive descendant. Iterative expansion
// with a visited set, so a malformed cyclic snapshot terminates instead of
// looping. Result starts with id itself and is otherwise sorted.
func (idx *Index) Closure(id uint) []uint {
	if !idx.Contains(id) {
		return nil
	}
	visited := map[uint]bool{id: true}
	stack := append([]uint(nil), idx.children[id]...)
	var descendants []uint
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[current] {
			continue
		}
		visited[current] = true
		descendants = append(descendants, current)
		stack = append(stack, idx.children[current]...)
	}
	sort.Slice(descendants, func(i, j int) bool { return descendants[i] < descendants[j] })
	return append([]uint{id}, descendants...)
}

// IsWithinScope reports whether target equals one of own, or is a descendant
// of one of them. This is the broad-scope authorization primitive.
func (idx *Index) IsWithinScope(target uint, own []uint) bool {
	for _, d := range own {
		if d == target {
			return true
		}
		for _, id := range idx.Closure(d) {
			if id == target {
				return true
			}
		}
	}
	return false
}

// DescendantCount returns how many departments sit below id.
func (idx *Index) DescendantCount(id uint) int {
	c := idx.Closure(id)
	if len(c) == 0 {
		return 0
	}
	return len(c) - 1
}

// WouldCycle reports whether repointing id's parent to newParent creates a
// cycle, that is, whether newParent already sits inside id's closure. Checked
// synchronously before any parent write commits.
func (idx *Index) WouldCycle(id, newParent uint) bool {
	if id == newParent {
		return true
	}
	for _, d := range idx.Closure(id) {
		if d == newParent {
			return true
		}
	}
	return false
}
