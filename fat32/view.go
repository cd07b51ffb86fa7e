// Package fat32 implements the core of a FAT32 volume engine that operates
// purely on an in-memory byte buffer representing a complete disk image.
//
// It provides read access (directory listing, path resolution, file content
// reconstruction) and a controlled write capability (create or overwrite a
// short-named regular file in an existing directory). It never mounts a
// real device and never performs file I/O itself; callers own loading the
// image into a buffer and persisting it afterward.
package fat32

// ReadOnlyView is a read-only capability surface over a FAT32 image buffer.
// Its methods never mutate buf.
type ReadOnlyView struct {
	geo *Geometry
	io  *clusterIO
	buf []byte
}

// NewReadOnlyView decodes buf's boot parameter block and returns a view
// supporting every read operation in spec.md §6. It fails with a BadBpb
// *fserr.Error if the geometry is invalid or unsupported.
func NewReadOnlyView(buf []byte) (*ReadOnlyView, error) {
	geo, err := DecodeGeometry(buf)
	if err != nil {
		return nil, err
	}
	return &ReadOnlyView{
		geo: geo,
		io:  newClusterIO(geo, buf),
		buf: buf,
	}, nil
}

// Geometry returns the volume's decoded, immutable geometry.
func (v *ReadOnlyView) Geometry() Geometry {
	return *v.geo
}

// ListRoot returns the root directory's entries, per spec.md §4.6/§6.
func (v *ReadOnlyView) ListRoot() ([]DirEntry, error) {
	return v.io.listRoot()
}

// ListDirPath resolves path and returns its entries. path must resolve to
// a directory, else NotADirectory, per spec.md §4.6.
func (v *ReadOnlyView) ListDirPath(path string) ([]DirEntry, error) {
	return v.io.listDirPath(path)
}

// OpenPath resolves path without reading file content, per spec.md §4.6.
func (v *ReadOnlyView) OpenPath(path string) (DirEntry, error) {
	return v.io.openPath(path)
}

// ReadFile follows entry's cluster chain and returns its full contents, per
// spec.md §4.7.
func (v *ReadOnlyView) ReadFile(entry DirEntry) ([]byte, error) {
	return v.io.readFile(entry)
}

// ReadFileByPath resolves path, requires it to be a regular file (else
// NotAFile), and returns its full contents, per spec.md §4.6/§4.7.
func (v *ReadOnlyView) ReadFileByPath(path string) ([]byte, error) {
	entry, err := v.io.openPath(path)
	if err != nil {
		return nil, err
	}
	if entry.IsDir {
		return nil, notAFileError(path)
	}
	return v.io.readFile(entry)
}

// MutableView is a read-write capability surface over a FAT32 image buffer.
// It embeds ReadOnlyView so every read operation is available, and adds the
// one write operation the core supports. Because WriteFileByPath is only
// declared on *MutableView, a caller holding a *ReadOnlyView has no way to
// reach it — the capability split from spec.md §9 is enforced by the type
// system, not a runtime flag.
type MutableView struct {
	ReadOnlyView
}

// NewMutableView is NewReadOnlyView for callers that also need
// WriteFileByPath. The caller retains ownership of buf and is responsible
// for persisting it after a successful write.
func NewMutableView(buf []byte) (*MutableView, error) {
	ro, err := NewReadOnlyView(buf)
	if err != nil {
		return nil, err
	}
	return &MutableView{ReadOnlyView: *ro}, nil
}

// WriteFileByPath creates or overwrites a short-named regular file at path
// with the given contents, per spec.md §4.8. See writer.go for the full
// nine-step procedure and its atomicity guarantees.
func (v *MutableView) WriteFileByPath(path string, payload []byte) error {
	return v.io.writeFileByPath(path, payload)
}
