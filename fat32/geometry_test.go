package fat32_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShHaWkK/fat32vol/fat32"
	"github.com/ShHaWkK/fat32vol/fserr"
)

func TestDecodeGeometry_Valid(t *testing.T) {
	img := newTestImage(t, 4)

	geo, err := fat32.DecodeGeometry(img.buf)
	require.NoError(t, err)
	assert.EqualValues(t, 512, geo.BytesPerSector)
	assert.EqualValues(t, 1, geo.SectorsPerCluster)
	assert.EqualValues(t, 2, geo.RootCluster)
	assert.EqualValues(t, 4, geo.TotalClusters)
	assert.EqualValues(t, 512, geo.BytesPerCluster)
	assert.EqualValues(t, 1024, geo.DataStart)
}

func TestDecodeGeometry_TooShort(t *testing.T) {
	_, err := fat32.DecodeGeometry(make([]byte, 100))
	require.Error(t, err)
	assert.True(t, fserr.Is(err, fserr.BadBpb))
}

func TestDecodeGeometry_AggregatesMultipleViolations(t *testing.T) {
	buf := make([]byte, 2048)
	// bytes_per_sector wrong, sectors_per_cluster not a power of two,
	// num_fats zero, fat_size_sectors zero, root_cluster < 2: five
	// independent violations, all should surface in one error.
	binary.LittleEndian.PutUint16(buf[11:], 4096)
	buf[13] = 3
	binary.LittleEndian.PutUint16(buf[14:], 1)
	buf[16] = 0
	binary.LittleEndian.PutUint32(buf[36:], 0)
	binary.LittleEndian.PutUint32(buf[44:], 1)

	_, err := fat32.DecodeGeometry(buf)
	require.Error(t, err)
	assert.True(t, fserr.Is(err, fserr.BadBpb))

	msg := err.Error()
	assert.Contains(t, msg, "bytes_per_sector")
	assert.Contains(t, msg, "sectors_per_cluster")
	assert.Contains(t, msg, "num_fats")
	assert.Contains(t, msg, "fat_size_sectors")
	assert.Contains(t, msg, "root_cluster")
}

func TestDecodeGeometry_RootClusterOutOfRange(t *testing.T) {
	img := newTestImage(t, 1)
	// Root cluster is the only cluster the image has room for; point it one
	// past the end instead.
	binary.LittleEndian.PutUint32(img.buf[44:], 3)

	_, err := fat32.DecodeGeometry(img.buf)
	require.Error(t, err)
	assert.True(t, fserr.Is(err, fserr.BadBpb))
}
