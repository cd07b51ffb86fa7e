package fat32

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShHaWkK/fat32vol/fserr"
)

func geometryForClusterTest(totalClusters uint32) *Geometry {
	const bps = 512
	return &Geometry{
		BytesPerSector:  bps,
		FATStart:        bps,
		DataStart:       int64(bps) * 2,
		BytesPerCluster: bps,
		NumFATs:         1,
		FATSizeSectors:  1,
		TotalClusters:   totalClusters,
	}
}

func TestWriteCluster_ZeroFillsShortPayload(t *testing.T) {
	geo := geometryForClusterTest(2)
	buf := make([]byte, geo.DataStart+int64(geo.TotalClusters)*geo.BytesPerCluster)
	// Poison the cluster so a bug in zero-filling would be visible.
	offset, err := (&clusterIO{geo: geo, buf: buf}).clusterOffset(2)
	require.NoError(t, err)
	for i := offset; i < offset+geo.BytesPerCluster; i++ {
		buf[i] = 0xFF
	}

	c := newClusterIO(geo, buf)
	require.NoError(t, c.writeCluster(2, []byte("hi")))

	data, err := c.readCluster(2)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("hi")))
	assert.Equal(t, make([]byte, int(geo.BytesPerCluster)-2), data[2:], "rest of cluster must be zero-filled")
}

func TestWriteCluster_RejectsOversizedPayload(t *testing.T) {
	geo := geometryForClusterTest(1)
	buf := make([]byte, geo.DataStart+int64(geo.TotalClusters)*geo.BytesPerCluster)
	c := newClusterIO(geo, buf)

	err := c.writeCluster(2, make([]byte, int(geo.BytesPerCluster)+1))
	require.Error(t, err)
	assert.True(t, fserr.Is(err, fserr.OutOfRange))
}

func TestClusterOffset_RejectsOutOfRangeCluster(t *testing.T) {
	geo := geometryForClusterTest(1)
	buf := make([]byte, geo.DataStart+int64(geo.TotalClusters)*geo.BytesPerCluster)
	c := newClusterIO(geo, buf)

	_, err := c.clusterOffset(1)
	require.Error(t, err)
	assert.True(t, fserr.Is(err, fserr.OutOfRange))

	_, err = c.clusterOffset(3)
	require.Error(t, err)
	assert.True(t, fserr.Is(err, fserr.OutOfRange))
}
