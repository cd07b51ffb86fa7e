package fat32

import (
	"github.com/boljen/go-bitmap"

	"github.com/ShHaWkK/fat32vol/fserr"
)

// allocator does first-fit cluster allocation against a transient snapshot
// of the FAT's free/used state, adapted from the teacher's
// drivers/common/allocatormap.go Allocator (a bitmap.Bitmap scanned
// linearly for the first clear bit). Unlike the teacher's block allocator,
// clusters here are not required to be contiguous: spec.md §4.8 step 5
// only asks for "free entries", not a run.
//
// Nothing touched here is written back to the volume buffer; the bitmap is
// discarded once the caller has its cluster list. This is what gives
// spec.md §4.8 step 5 ("If insufficient, fail NoSpace and make NO
// mutations") for free.
type allocator struct {
	geo    *Geometry
	bitmap bitmap.Bitmap
}

// newAllocator builds a bitmap snapshot of every cluster's free/used state
// by reading the FAT once.
func newAllocator(geo *Geometry, buf []byte) (*allocator, error) {
	bm := bitmap.New(int(geo.TotalClusters))

	for i := uint32(0); i < geo.TotalClusters; i++ {
		cluster := i + 2
		value, err := geo.readEntry(buf, cluster)
		if err != nil {
			return nil, err
		}
		if classify(value) != classFree {
			bm.Set(int(i), true)
		}
	}

	return &allocator{geo: geo, bitmap: bm}, nil
}

// allocate picks the first n free clusters in ascending order. It returns
// NoSpace, leaving the bitmap (and therefore the real FAT) untouched, if
// fewer than n are available.
func (a *allocator) allocate(n int) ([]uint32, error) {
	if n == 0 {
		return nil, nil
	}

	result := make([]uint32, 0, n)
	for i := 0; i < int(a.geo.TotalClusters) && len(result) < n; i++ {
		if !a.bitmap.Get(i) {
			a.bitmap.Set(i, true)
			result = append(result, uint32(i)+2)
		}
	}

	if len(result) < n {
		for _, cluster := range result {
			a.bitmap.Set(int(cluster-2), false)
		}
		return nil, fserr.Newf(fserr.NoSpace,
			"need %d free clusters, only %d available", n, len(result))
	}

	return result, nil
}
