package fat32

import (
	"github.com/ShHaWkK/fat32vol/fserr"
)

// notAFileError builds the NotAFile error raised when an operation needing
// a regular file is given a directory instead, per spec.md §4.6/§7.
func notAFileError(path string) error {
	return fserr.Newf(fserr.NotAFile, "%q is a directory, not a file", path)
}

// readFile assembles exactly entry.Size bytes by following entry's cluster
// chain, per spec.md §4.7.
func (c *clusterIO) readFile(entry DirEntry) ([]byte, error) {
	if entry.Size == 0 || entry.FirstCluster == 0 {
		return []byte{}, nil
	}

	chain, err := c.geo.walkChain(c.buf, entry.FirstCluster)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, entry.Size)
	remaining := int(entry.Size)

	for _, cluster := range chain {
		if remaining == 0 {
			break
		}
		data, err := c.readCluster(cluster)
		if err != nil {
			return nil, err
		}
		take := remaining
		if take > len(data) {
			take = len(data)
		}
		out = append(out, data[:take]...)
		remaining -= take
	}

	if remaining > 0 {
		return nil, fserr.Newf(fserr.CorruptChain,
			"chain from cluster %d ended %d bytes short of declared size %d",
			entry.FirstCluster, remaining, entry.Size)
	}

	return out, nil
}
