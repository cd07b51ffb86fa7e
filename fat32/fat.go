package fat32

import (
	"encoding/binary"

	"github.com/ShHaWkK/fat32vol/fserr"
)

// Reserved upper nibble mask/significant-value mask for a 32-bit FAT entry,
// per spec.md §3.
const (
	fatEntrySignificantMask = 0x0FFF_FFFF
	fatEntryReservedMask    = 0xF000_0000

	fatValueFree     = 0x0000_0000
	fatValueBad      = 0x0FFF_FFF7
	fatValueEOCWrite = 0x0FFF_FFFF // value written to mark a fresh end-of-chain
	fatAllocMin      = 0x0000_0002
	fatAllocMax      = 0x0FFF_FFEF
	fatEOCThreshold  = 0x0FFF_FFF8
)

// entryClass is the classification of a single FAT entry's significant
// value, per spec.md §3.
type entryClass int

const (
	classFree entryClass = iota
	classNext
	classBad
	classEOC
	classReserved
)

// classify implements the classification table in spec.md §3.
func classify(v uint32) entryClass {
	switch {
	case v == fatValueFree:
		return classFree
	case v >= fatAllocMin && v <= fatAllocMax:
		return classNext
	case v == fatValueBad:
		return classBad
	case v >= fatEOCThreshold:
		return classEOC
	default:
		// Covers 0x00000001 and 0x0FFFFFF0..0x0FFFFFF6: reserved values.
		// walkChain rejects them as CorruptChain when encountered mid-chain.
		return classReserved
	}
}

// fatEntryOffset returns the byte offset of cluster's 4-byte FAT entry, or an
// error if cluster is outside the valid cluster range or its entry would
// fall outside the FAT region.
func (g *Geometry) fatEntryOffset(cluster uint32, bufLen int) (int64, error) {
	if cluster < 2 || cluster >= g.TotalClusters+2 {
		return 0, fserr.Newf(fserr.OutOfRange,
			"cluster %d not in valid range [2,%d)", cluster, g.TotalClusters+2)
	}
	offset := g.FATStart + int64(cluster)*4
	fatRegionEnd := g.FATStart + int64(g.NumFATs)*int64(g.FATSizeSectors)*int64(g.BytesPerSector)
	if offset+4 > fatRegionEnd || offset+4 > int64(bufLen) {
		return 0, fserr.Newf(fserr.OutOfRange,
			"FAT entry for cluster %d falls outside the FAT region", cluster)
	}
	return offset, nil
}

// readEntry returns the 28-bit significant value of the FAT entry for
// cluster, per spec.md §4.2.
func (g *Geometry) readEntry(buf []byte, cluster uint32) (uint32, error) {
	offset, err := g.fatEntryOffset(cluster, len(buf))
	if err != nil {
		return 0, err
	}
	raw := binary.LittleEndian.Uint32(buf[offset : offset+4])
	return raw & fatEntrySignificantMask, nil
}

// writeEntry writes the low 28 bits of value into cluster's FAT entry,
// preserving the upper 4 reserved bits already on disk, per spec.md §4.2.
func (g *Geometry) writeEntry(buf []byte, cluster uint32, value uint32) error {
	offset, err := g.fatEntryOffset(cluster, len(buf))
	if err != nil {
		return err
	}
	existing := binary.LittleEndian.Uint32(buf[offset : offset+4])
	merged := (existing & fatEntryReservedMask) | (value & fatEntrySignificantMask)
	binary.LittleEndian.PutUint32(buf[offset:offset+4], merged)
	return nil
}

// maxChainLength is the hard cap on the number of clusters a single chain
// traversal may visit, per spec.md §4.4: total_clusters + 2.
func (g *Geometry) maxChainLength() int {
	return int(g.TotalClusters) + 2
}

// walkChain yields the cluster numbers of the chain starting at start, in
// order, enforcing the cap from spec.md §4.4. It fails CorruptChain if the
// chain runs into a Bad or Reserved entry, or exceeds the cap.
func (g *Geometry) walkChain(buf []byte, start uint32) ([]uint32, error) {
	chain := make([]uint32, 0, 8)
	current := start
	limit := g.maxChainLength()

	for i := 0; i < limit; i++ {
		chain = append(chain, current)

		value, err := g.readEntry(buf, current)
		if err != nil {
			return nil, err
		}

		switch classify(value) {
		case classEOC:
			return chain, nil
		case classBad, classReserved:
			return nil, fserr.Newf(fserr.CorruptChain,
				"cluster %d in chain from %d points to a bad/reserved entry (0x%08X)",
				current, start, value)
		case classNext:
			current = value
		case classFree:
			return nil, fserr.Newf(fserr.CorruptChain,
				"cluster %d in chain from %d points to a free entry", current, start)
		}
	}

	return nil, fserr.Newf(fserr.CorruptChain,
		"chain starting at %d exceeded the maximum length of %d clusters", start, limit)
}
