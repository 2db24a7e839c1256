package main

import "github.com/cespare/xxhash/v2"

// visitedSet tracks real directory paths already walked so symlinks cannot
// lead the walker back into a directory it has seen.
type visitedSet struct {
	seen map[uint64]struct{}
}

func newVisitedSet() *visitedSet {
	return &visitedSet{seen: make(map[uint64]struct{})}
}

// add records realPath and reports whether it was new.
func (v *visitedSet) add(realPath string) bool {
	key := xxhash.Sum64String(realPath)
	if _, ok := v.seen[key]; ok {
		return false
	}
	v.seen[key] = struct{}{}
	return true
}

func (v *visitedSet) len() int {
	return len(v.seen)
}
