package fat32

import (
	"bytes"
	"strings"

	"github.com/ShHaWkK/fat32vol/fserr"
)

// DirentSize is the size of a single raw directory entry, in bytes, per
// spec.md §3.
const DirentSize = 32

// On-disk directory entry attribute bits, per spec.md §3.
const (
	AttrReadOnly = 1 << iota
	AttrHidden
	AttrSystem
	AttrVolumeLabel
	AttrDirectory
	AttrArchive
)

// AttrLongName marks an entry as an LFN slot: all four low attribute bits
// set. This core skips these entries entirely (spec.md §1 Non-goals).
const AttrLongName = AttrReadOnly | AttrHidden | AttrSystem | AttrVolumeLabel

const (
	direntFreeMarker      = 0x00
	direntDeletedMarker   = 0xE5
	direntEscapedE5Marker = 0x05
)

// entryLocation identifies exactly where a directory entry's 32 bytes live,
// so a writer can rewrite the slot in place. ClusterIndex is the position of
// the containing cluster within the directory's chain (0-based); ByteOffset
// is the offset of the record within that cluster.
type entryLocation struct {
	ClusterIndex int
	ByteOffset   int
}

// DirEntry is the logical, decoded form of a FAT32 directory record, per
// spec.md §3.
type DirEntry struct {
	Name         string
	IsDir        bool
	FirstCluster uint32
	Size         uint32

	location entryLocation
}

// DecodeShortName reconstructs the logical "BASE" or "BASE.EXT" name from an
// 11-byte raw 8.3 name field (bytes 0..11 of a directory record), per
// spec.md §4.5 step 5. It does not interpret byte 0 as a deleted/free
// marker; callers check that separately.
func DecodeShortName(raw [11]byte) string {
	var baseBuf [8]byte
	copy(baseBuf[:], raw[:8])

	// A literal 0xE5 as the first byte of a live entry is stored as 0x05 to
	// avoid colliding with the deleted-entry marker, per spec.md §3. This
	// byte is not necessarily valid ASCII/UTF-8, so the name is built up
	// byte-wise (uppercasing only 'a'..'z') rather than through
	// strings.ToUpper, which would mangle it via UTF-8 replacement.
	if baseBuf[0] == direntEscapedE5Marker {
		baseBuf[0] = direntDeletedMarker
	}

	trimmedBase := bytes.TrimRight(upperASCII(baseBuf[:]), " ")
	trimmedExt := bytes.TrimRight(upperASCII(raw[8:11]), " ")

	if len(trimmedExt) == 0 {
		return string(trimmedBase)
	}
	return string(trimmedBase) + "." + string(trimmedExt)
}

// upperASCII returns a copy of b with 'a'..'z' bytes uppercased; all other
// bytes, including non-ASCII ones, pass through unchanged.
func upperASCII(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		out[i] = c
	}
	return out
}

// EncodeShortName is the inverse of DecodeShortName: it produces the 11-byte
// space-padded raw name field for a "BASE" or "BASE.EXT" logical name. The
// name must already be validated (see ValidateShortName); this function
// does not re-validate it.
func EncodeShortName(name string) [11]byte {
	var raw [11]byte
	for i := range raw {
		raw[i] = ' '
	}

	base, ext, _ := strings.Cut(name, ".")

	copy(raw[0:8], upperASCII([]byte(base)))
	copy(raw[8:11], upperASCII([]byte(ext)))

	if raw[0] == direntDeletedMarker {
		raw[0] = direntEscapedE5Marker
	}
	return raw
}

// decodeRawDirent turns 32 raw bytes into a DirEntry. It returns (entry,
// stop, skip): stop is true when name[0] == 0x00, the end-of-directory
// sentinel, and the scan must halt; in that case entry is zero-valued and
// skip is false. A record that should be skipped (deleted, LFN slot, volume
// label) is reported via the skip return value.
func decodeRawDirent(raw []byte) (entry DirEntry, stop bool, skip bool) {
	if raw[0] == direntFreeMarker {
		return DirEntry{}, true, false
	}
	if raw[0] == direntDeletedMarker {
		return DirEntry{}, false, true
	}

	attr := raw[11]
	if attr == AttrLongName {
		return DirEntry{}, false, true
	}
	isDir := attr&AttrDirectory != 0
	if attr&AttrVolumeLabel != 0 && !isDir {
		return DirEntry{}, false, true
	}

	var rawName [11]byte
	copy(rawName[:], raw[0:11])

	firstClusterHigh := uint32(raw[20]) | uint32(raw[21])<<8
	firstClusterLow := uint32(raw[26]) | uint32(raw[27])<<8
	firstCluster := (firstClusterHigh << 16) | firstClusterLow

	size := uint32(raw[28]) | uint32(raw[29])<<8 | uint32(raw[30])<<16 | uint32(raw[31])<<24
	if isDir {
		size = 0
	}

	return DirEntry{
		Name:         DecodeShortName(rawName),
		IsDir:        isDir,
		FirstCluster: firstCluster,
		Size:         size,
	}, false, false
}

// encodeRawDirentInto writes entry's fields into the 32-byte slot dst,
// per spec.md §4.8 step 8: bytes 0..11 (name), attribute byte, cluster
// high/low words, and size. Bytes outside those fields are left untouched,
// so callers creating a brand-new slot must zero dst first.
func encodeRawDirentInto(dst []byte, name string, attr uint8, firstCluster, size uint32) {
	raw := EncodeShortName(name)
	copy(dst[0:11], raw[:])
	dst[11] = attr
	dst[20] = byte(firstCluster >> 16)
	dst[21] = byte(firstCluster >> 24)
	dst[26] = byte(firstCluster)
	dst[27] = byte(firstCluster >> 8)
	dst[28] = byte(size)
	dst[29] = byte(size >> 8)
	dst[30] = byte(size >> 16)
	dst[31] = byte(size >> 24)
}

// readDirectory decodes every live directory entry reachable from
// startCluster's cluster chain, in on-disk order, per spec.md §4.5.
func (c *clusterIO) readDirectory(startCluster uint32) ([]DirEntry, error) {
	chain, err := c.geo.walkChain(c.buf, startCluster)
	if err != nil {
		return nil, err
	}

	entries := []DirEntry{}

outer:
	for clusterIndex, cluster := range chain {
		data, err := c.readCluster(cluster)
		if err != nil {
			return nil, err
		}

		directsPerCluster := int(c.geo.BytesPerCluster) / DirentSize
		for i := 0; i < directsPerCluster; i++ {
			byteOffset := i * DirentSize
			raw := data[byteOffset : byteOffset+DirentSize]

			entry, stop, skip := decodeRawDirent(raw)
			if stop {
				break outer
			}
			if skip {
				continue
			}

			entry.location = entryLocation{ClusterIndex: clusterIndex, ByteOffset: byteOffset}
			entries = append(entries, entry)
		}
	}

	return entries, nil
}

// findEntryByName looks up a non-deleted entry matching uppercasedName
// exactly (case already normalised by the caller), per spec.md §4.6.
func findEntryByName(entries []DirEntry, uppercasedName string) (DirEntry, bool) {
	for _, e := range entries {
		if e.Name == uppercasedName {
			return e, true
		}
	}
	return DirEntry{}, false
}

// shortNameChars is the accepted character set for an 8.3 base/extension
// component, per spec.md §4.8 step 1.
const shortNameChars = "!#$%&'()-@^_`{}~"

// ValidateShortName checks that name is a syntactically valid 8.3 short
// file name (case-insensitively; lowercase is accepted and uppercased by
// the caller), per spec.md §4.8 step 1. It returns a descriptive error
// naming which rule failed, or nil if name is valid.
func ValidateShortName(name string) error {
	if name == "" {
		return fserr.New(fserr.InvalidPath, "name is empty")
	}
	if strings.ContainsAny(name, "/\\") {
		return fserr.Newf(fserr.InvalidPath, "name %q contains a path separator", name)
	}

	base, ext, hasDot := strings.Cut(name, ".")
	if strings.Contains(ext, ".") {
		return fserr.Newf(fserr.InvalidPath, "name %q has more than one dot", name)
	}
	if hasDot && ext == "" {
		return fserr.Newf(fserr.InvalidPath, "name %q has a trailing dot with no extension", name)
	}

	if len(base) == 0 || len(base) > 8 {
		return fserr.Newf(fserr.InvalidPath, "base name %q must be 1-8 characters", base)
	}
	if len(ext) > 3 {
		return fserr.Newf(fserr.InvalidPath, "extension %q must be at most 3 characters", ext)
	}

	for _, part := range []string{base, ext} {
		for _, r := range part {
			if !isValidShortNameRune(r) {
				return fserr.Newf(fserr.InvalidPath, "name %q contains invalid character %q", name, r)
			}
		}
	}

	return nil
}

func isValidShortNameRune(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z':
		return true
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	case strings.ContainsRune(shortNameChars, r):
		return true
	default:
		return false
	}
}
