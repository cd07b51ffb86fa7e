package fat32_test

import (
	"encoding/binary"
	"testing"

	"github.com/ShHaWkK/fat32vol/fat32"
)

// eocMarker is the value this core writes to terminate a fresh chain
// (spec.md §4.8 step 7).
const eocMarker = 0x0FFF_FFFF

// testImage is a hand-built synthetic FAT32 volume used to exercise the
// seed scenarios and invariants from spec.md §8, the way the teacher's own
// tests build small fixtures inline rather than loading real disk images.
type testImage struct {
	buf               []byte
	bytesPerSector    uint16
	sectorsPerCluster uint8
	reservedSectors   uint16
	numFATs           uint8
	fatSizeSectors    uint32
	rootCluster       uint32
	fatStart          int
	dataStart         int
	bytesPerCluster   int
}

// newTestImage builds an image with the BPB geometry from spec.md §8's S1:
// bps=512, spc=1, rsvd=1, fats=1, fatsz=1, root=2, sized to hold exactly
// totalClusters data clusters (cluster numbers [2, totalClusters+2)). The
// root directory's FAT entry is pre-set to end-of-chain.
func newTestImage(t *testing.T, totalClusters int) *testImage {
	t.Helper()

	bps := uint16(512)
	spc := uint8(1)
	rsvd := uint16(1)
	fats := uint8(1)
	fatsz := uint32(1)
	root := uint32(2)

	bpc := int(bps) * int(spc)
	fatStart := int(rsvd) * int(bps)
	dataStart := fatStart + int(fats)*int(fatsz)*int(bps)
	size := dataStart + totalClusters*bpc

	buf := make([]byte, size)
	binary.LittleEndian.PutUint16(buf[11:], bps)
	buf[13] = spc
	binary.LittleEndian.PutUint16(buf[14:], rsvd)
	buf[16] = fats
	binary.LittleEndian.PutUint32(buf[36:], fatsz)
	binary.LittleEndian.PutUint32(buf[44:], root)

	img := &testImage{
		buf:               buf,
		bytesPerSector:    bps,
		sectorsPerCluster: spc,
		reservedSectors:   rsvd,
		numFATs:           fats,
		fatSizeSectors:    fatsz,
		rootCluster:       root,
		fatStart:          fatStart,
		dataStart:         dataStart,
		bytesPerCluster:   bpc,
	}
	img.setFAT(root, eocMarker)
	return img
}

func (img *testImage) setFAT(cluster uint32, value uint32) {
	offset := img.fatStart + int(cluster)*4
	binary.LittleEndian.PutUint32(img.buf[offset:], value)
}

func (img *testImage) getFAT(cluster uint32) uint32 {
	offset := img.fatStart + int(cluster)*4
	return binary.LittleEndian.Uint32(img.buf[offset:]) & 0x0FFF_FFFF
}

func (img *testImage) clusterBytes(cluster uint32) []byte {
	offset := img.dataStart + int(cluster-2)*img.bytesPerCluster
	return img.buf[offset : offset+img.bytesPerCluster]
}

// writeDirent writes a full 32-byte directory record for name into slot
// slotIndex of cluster.
func (img *testImage) writeDirent(cluster uint32, slotIndex int, name string, isDir bool, firstCluster, size uint32) {
	rec := img.clusterBytes(cluster)[slotIndex*32 : slotIndex*32+32]

	raw := fat32.EncodeShortName(name)
	copy(rec[0:11], raw[:])

	attr := uint8(fat32.AttrArchive)
	if isDir {
		attr = fat32.AttrDirectory
	}
	rec[11] = attr

	rec[20] = byte(firstCluster >> 16)
	rec[21] = byte(firstCluster >> 24)
	rec[26] = byte(firstCluster)
	rec[27] = byte(firstCluster >> 8)

	if !isDir {
		binary.LittleEndian.PutUint32(rec[28:32], size)
	}
}

func (img *testImage) writeClusterData(cluster uint32, data []byte) {
	copy(img.clusterBytes(cluster), data)
}
