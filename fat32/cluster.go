package fat32

import (
	"io"

	"github.com/noxer/bytewriter"
	"github.com/xaionaro-go/bytesextra"

	"github.com/ShHaWkK/fat32vol/fserr"
)

// clusterIO maps cluster numbers onto byte offsets in the volume buffer and
// performs bounds-checked whole-cluster reads/writes, per spec.md §4.3.
//
// It wraps the caller's buffer in a bytesextra.ReadWriteSeeker once, the way
// the teacher's BlockStream wraps an io.ReadWriteSeeker, rather than indexing
// the slice directly on every call.
type clusterIO struct {
	geo    *Geometry
	buf    []byte
	stream io.ReadWriteSeeker
}

func newClusterIO(geo *Geometry, buf []byte) *clusterIO {
	return &clusterIO{
		geo:    geo,
		buf:    buf,
		stream: bytesextra.NewReadWriteSeeker(buf),
	}
}

// clusterOffset returns the byte offset of the start of cluster, per
// spec.md §4.3: data_start + (c - 2) * bytes_per_cluster.
func (c *clusterIO) clusterOffset(cluster uint32) (int64, error) {
	if cluster < 2 || cluster >= c.geo.TotalClusters+2 {
		return 0, fserr.Newf(fserr.OutOfRange,
			"cluster %d not in valid range [2,%d)", cluster, c.geo.TotalClusters+2)
	}
	offset := c.geo.DataStart + int64(cluster-2)*c.geo.BytesPerCluster
	if offset+c.geo.BytesPerCluster > int64(len(c.buf)) {
		return 0, fserr.Newf(fserr.OutOfRange,
			"cluster %d extends past the end of the buffer", cluster)
	}
	return offset, nil
}

// readCluster returns a fresh copy of the bytes in cluster.
func (c *clusterIO) readCluster(cluster uint32) ([]byte, error) {
	offset, err := c.clusterOffset(cluster)
	if err != nil {
		return nil, err
	}
	if _, err := c.stream.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	data := make([]byte, c.geo.BytesPerCluster)
	if _, err := io.ReadFull(c.stream, data); err != nil {
		return nil, err
	}
	return data, nil
}

// writeCluster writes payload into cluster. Payload must be no longer than
// bytes_per_cluster; any remaining bytes of the cluster are zero-filled, per
// spec.md §4.3. Zero-filling falls out of writing into a freshly zeroed
// scratch slice through a bounded bytewriter.Writer instead of manually
// clearing the tail.
func (c *clusterIO) writeCluster(cluster uint32, payload []byte) error {
	offset, err := c.clusterOffset(cluster)
	if err != nil {
		return err
	}
	if int64(len(payload)) > c.geo.BytesPerCluster {
		return fserr.Newf(fserr.OutOfRange,
			"payload of %d bytes exceeds cluster size %d", len(payload), c.geo.BytesPerCluster)
	}

	scratch := make([]byte, c.geo.BytesPerCluster)
	if len(payload) > 0 {
		w := bytewriter.New(scratch)
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}

	if _, err := c.stream.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	_, err = c.stream.Write(scratch)
	return err
}
