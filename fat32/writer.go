package fat32

import (
	"strings"

	"github.com/ShHaWkK/fat32vol/fserr"
)

// writeFileByPath creates or overwrites a short-named regular file, per
// spec.md §4.8. It implements steps 1-9 in order, including the undo of
// step 7 if step 8 fails (atomicity, spec.md §4.8 "Atomicity" / §5
// "Ordering guarantees").
func (c *clusterIO) writeFileByPath(path string, payload []byte) error {
	parentPath, name := splitParentAndName(path)
	if name == "" {
		return fserr.New(fserr.InvalidPath, "path has no final segment")
	}
	if err := ValidateShortName(name); err != nil {
		return err
	}
	upperName := strings.ToUpper(name)

	// Step 2: resolve parent.
	parentEntry, err := c.resolvePath(parentPath)
	if err != nil {
		return err
	}
	if !parentEntry.IsDir {
		return fserr.Newf(fserr.NotADirectory, "%q is not a directory", parentPath)
	}

	parentChain, err := c.geo.walkChain(c.buf, parentEntry.FirstCluster)
	if err != nil {
		return err
	}

	// Step 3: look for an existing entry to overwrite.
	entries, err := c.readDirectory(parentEntry.FirstCluster)
	if err != nil {
		return err
	}
	existing, found := findEntryByName(entries, upperName)

	// Step 4: compute clusters needed.
	needed := 0
	if len(payload) > 0 {
		needed = int((int64(len(payload)) + c.geo.BytesPerCluster - 1) / c.geo.BytesPerCluster)
	}

	// Step 5: allocate. Fails NoSpace with zero mutations if insufficient.
	alloc, err := newAllocator(c.geo, c.buf)
	if err != nil {
		return err
	}
	newChain, err := alloc.allocate(needed)
	if err != nil {
		return err
	}

	// Step 6: write payload into the newly allocated (still unreferenced)
	// clusters. A failure here touches only clusters nothing points to yet,
	// so it's invisible to readers per the Atomicity note in spec.md §4.8.
	offset := 0
	for _, cluster := range newChain {
		end := offset + int(c.geo.BytesPerCluster)
		if end > len(payload) {
			end = len(payload)
		}
		if err := c.writeCluster(cluster, payload[offset:end]); err != nil {
			return err
		}
		offset = end
	}

	// Step 7: splice the chain start -> end, then write EOC.
	for i, cluster := range newChain {
		var linkErr error
		if i == len(newChain)-1 {
			linkErr = c.geo.writeEntry(c.buf, cluster, fatValueEOCWrite)
		} else {
			linkErr = c.geo.writeEntry(c.buf, cluster, newChain[i+1])
		}
		if linkErr != nil {
			c.rollbackChain(newChain[:i])
			return linkErr
		}
	}

	var firstCluster uint32
	if len(newChain) > 0 {
		firstCluster = newChain[0]
	}

	// Step 8: update or create the directory entry.
	if found {
		err = c.rewriteDirentSlot(parentChain, existing.location, upperName, AttrArchive,
			firstCluster, uint32(len(payload)), false)
	} else {
		var loc entryLocation
		loc, err = c.findFreeSlot(parentChain)
		if err == nil {
			err = c.rewriteDirentSlot(parentChain, loc, upperName, AttrArchive,
				firstCluster, uint32(len(payload)), true)
		}
	}
	if err != nil {
		c.rollbackChain(newChain)
		return err
	}

	// Step 9: release the old chain only now that the new entry is durable.
	if found && existing.FirstCluster != 0 {
		c.releaseChainBestEffort(existing.FirstCluster)
	}

	return nil
}

// rollbackChain undoes step 7 by zeroing every FAT entry for chain, tail to
// head, the same direction release uses. Used when step 8 fails after the
// new chain has already been spliced.
func (c *clusterIO) rollbackChain(chain []uint32) {
	for i := len(chain) - 1; i >= 0; i-- {
		_ = c.geo.writeEntry(c.buf, chain[i], 0)
	}
}

// releaseChainBestEffort frees an overwritten file's old chain, per
// spec.md §4.8 step 9: walk next-pointers, then zero each FAT entry tail to
// head (spec.md §5's ordering guarantee). It never returns an error: if the
// chain turns out to be corrupt partway through, traversal simply stops and
// the remainder is leaked, exactly as spec.md §4.8 directs ("do not
// propagate - the new file is already valid").
func (c *clusterIO) releaseChainBestEffort(start uint32) {
	if start < 2 {
		return
	}

	chain := make([]uint32, 0, 8)
	current := start
	limit := c.geo.maxChainLength()

	for i := 0; i < limit; i++ {
		value, err := c.geo.readEntry(c.buf, current)
		if err != nil {
			break
		}
		chain = append(chain, current)

		if classify(value) != classNext {
			break
		}
		current = value
	}

	for i := len(chain) - 1; i >= 0; i-- {
		_ = c.geo.writeEntry(c.buf, chain[i], 0)
	}
}

// findFreeSlot finds the first directory slot in chain whose byte 0 marks
// it free (0x00) or deleted (0xE5), per spec.md §4.8 step 8.
func (c *clusterIO) findFreeSlot(chain []uint32) (entryLocation, error) {
	direntsPerCluster := int(c.geo.BytesPerCluster) / DirentSize

	for clusterIndex, cluster := range chain {
		data, err := c.readCluster(cluster)
		if err != nil {
			return entryLocation{}, err
		}
		for i := 0; i < direntsPerCluster; i++ {
			offset := i * DirentSize
			marker := data[offset]
			if marker == direntFreeMarker || marker == direntDeletedMarker {
				return entryLocation{ClusterIndex: clusterIndex, ByteOffset: offset}, nil
			}
		}
	}

	return entryLocation{}, fserr.New(fserr.DirFull, "no free directory slot in parent")
}

// rewriteDirentSlot writes name/attr/firstCluster/size into the slot at loc
// within parentChain. When zeroFirst is true the whole 32-byte slot is
// cleared before writing (new entry, spec.md §4.8 step 8 "Otherwise"
// branch); when false only the name/attr/cluster/size fields are touched,
// leaving timestamps and other reserved bytes as they were (the "existing
// slot was found" branch).
func (c *clusterIO) rewriteDirentSlot(
	parentChain []uint32, loc entryLocation, name string, attr uint8,
	firstCluster, size uint32, zeroFirst bool,
) error {
	cluster := parentChain[loc.ClusterIndex]
	data, err := c.readCluster(cluster)
	if err != nil {
		return err
	}

	slot := data[loc.ByteOffset : loc.ByteOffset+DirentSize]
	if zeroFirst {
		for i := range slot {
			slot[i] = 0
		}
	}
	encodeRawDirentInto(slot, name, attr, firstCluster, size)

	return c.writeCluster(cluster, data)
}
