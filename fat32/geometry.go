package fat32

import (
	"encoding/binary"

	"github.com/hashicorp/go-multierror"

	"github.com/ShHaWkK/fat32vol/fserr"
)

// Canonical byte offsets of the fields this core reads out of the boot
// parameter block, per spec.md §4.1.
const (
	bpbOffsetBytesPerSector    = 11
	bpbOffsetSectorsPerCluster = 13
	bpbOffsetReservedSectors   = 14
	bpbOffsetNumFATs           = 16
	bpbOffsetFATSizeSectors    = 36
	bpbOffsetRootCluster       = 44

	bpbSize = 512
)

// Geometry holds the immutable, validated layout of a FAT32 volume derived
// from its boot parameter block. Once constructed it never changes; every
// other component in this package treats it as read-only.
type Geometry struct {
	BytesPerSector      uint16
	SectorsPerCluster   uint8
	ReservedSectorCount uint16
	NumFATs             uint8
	FATSizeSectors      uint32
	RootCluster         uint32

	FATStart        int64
	DataStart       int64
	BytesPerCluster int64
	TotalClusters   uint32
}

// DecodeGeometry parses the first 512 bytes of buf as a FAT32 boot parameter
// block and derives the rest of the volume's geometry, per spec.md §4.1/§3.
//
// Every violation among the raw BPB field checks is collected before
// returning, rather than stopping at the first: a malformed image is likely
// to fail more than one check at once, and a caller debugging a bad image
// benefits from seeing all of them together. A buffer shorter than a boot
// sector fails at once, and the derived-layout checks (data region start,
// bytes per cluster, root cluster range) run only after the field checks
// pass, each returning its own BadBpb error.
func DecodeGeometry(buf []byte) (*Geometry, error) {
	if len(buf) < bpbSize {
		return nil, fserr.Newf(fserr.BadBpb, "buffer too short for a boot sector: got %d bytes, need %d", len(buf), bpbSize)
	}

	g := &Geometry{
		BytesPerSector:      binary.LittleEndian.Uint16(buf[bpbOffsetBytesPerSector:]),
		SectorsPerCluster:   buf[bpbOffsetSectorsPerCluster],
		ReservedSectorCount: binary.LittleEndian.Uint16(buf[bpbOffsetReservedSectors:]),
		NumFATs:             buf[bpbOffsetNumFATs],
		FATSizeSectors:      binary.LittleEndian.Uint32(buf[bpbOffsetFATSizeSectors:]),
		RootCluster:         binary.LittleEndian.Uint32(buf[bpbOffsetRootCluster:]),
	}

	var errs *multierror.Error

	if g.BytesPerSector != 512 {
		errs = multierror.Append(errs, fserr.Newf(fserr.BadBpb,
			"bytes_per_sector must be 512 for this core, got %d", g.BytesPerSector))
	}
	if !isPowerOfTwoInRange(g.SectorsPerCluster, 1, 128) {
		errs = multierror.Append(errs, fserr.Newf(fserr.BadBpb,
			"sectors_per_cluster must be a power of two in [1,128], got %d", g.SectorsPerCluster))
	}
	if g.NumFATs == 0 {
		errs = multierror.Append(errs, fserr.New(fserr.BadBpb, "num_fats must be at least 1"))
	}
	if g.FATSizeSectors == 0 {
		errs = multierror.Append(errs, fserr.New(fserr.BadBpb, "fat_size_sectors must be nonzero"))
	}
	if g.RootCluster < 2 {
		errs = multierror.Append(errs, fserr.Newf(fserr.BadBpb,
			"root_cluster must be >= 2, got %d", g.RootCluster))
	}

	if errs != nil {
		return nil, fserr.Wrap(fserr.BadBpb, errs.ErrorOrNil(), "invalid boot parameter block")
	}

	g.FATStart = int64(g.ReservedSectorCount) * int64(g.BytesPerSector)
	g.DataStart = g.FATStart + int64(g.NumFATs)*int64(g.FATSizeSectors)*int64(g.BytesPerSector)
	g.BytesPerCluster = int64(g.SectorsPerCluster) * int64(g.BytesPerSector)

	if g.DataStart > int64(len(buf)) {
		return nil, fserr.Newf(fserr.BadBpb,
			"data region start (%d) exceeds buffer length (%d)", g.DataStart, len(buf))
	}
	if g.BytesPerCluster < 32 {
		return nil, fserr.Newf(fserr.BadBpb,
			"bytes_per_cluster must be at least 32, got %d", g.BytesPerCluster)
	}

	g.TotalClusters = uint32((int64(len(buf)) - g.DataStart) / g.BytesPerCluster)

	if uint32(g.RootCluster) >= g.TotalClusters+2 {
		return nil, fserr.Newf(fserr.BadBpb,
			"root_cluster %d is out of range for %d total clusters", g.RootCluster, g.TotalClusters)
	}

	return g, nil
}

func isPowerOfTwoInRange(v uint8, lo, hi uint8) bool {
	if v < lo || v > hi {
		return false
	}
	return v&(v-1) == 0
}
