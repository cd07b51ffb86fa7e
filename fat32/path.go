package fat32

import (
	"strings"

	"github.com/ShHaWkK/fat32vol/fserr"
)

// rootEntry returns the synthetic directory entry representing "/", per
// spec.md §4.6.
func (g *Geometry) rootEntry() DirEntry {
	return DirEntry{
		Name:         "",
		IsDir:        true,
		FirstCluster: g.RootCluster,
	}
}

// resolvePath walks an absolute, "/"-separated path from the root, segment
// by segment, per spec.md §4.6. Each segment is uppercased before lookup;
// lookup itself is case-insensitive because stored names are always
// uppercase (spec.md §9).
func (c *clusterIO) resolvePath(path string) (DirEntry, error) {
	current := c.geo.rootEntry()

	segments := splitPathSegments(path)
	for i, segment := range segments {
		upper := strings.ToUpper(segment)

		entries, err := c.readDirectory(current.FirstCluster)
		if err != nil {
			return DirEntry{}, err
		}

		entry, found := findEntryByName(entries, upper)
		if !found {
			return DirEntry{}, fserr.Newf(fserr.NotFound, "no such file or directory: %q", segment)
		}

		isFinal := i == len(segments)-1
		if !isFinal && !entry.IsDir {
			return DirEntry{}, fserr.Newf(fserr.NotADirectory, "%q is a file, not a directory", segment)
		}

		current = entry
	}

	return current, nil
}

// splitPathSegments splits an absolute path into its non-empty segments.
// "/" itself yields no segments, resolving directly to the root entry.
func splitPathSegments(path string) []string {
	parts := strings.Split(path, "/")
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			segments = append(segments, p)
		}
	}
	return segments
}

// splitParentAndName splits path into its parent directory path and final
// segment, per spec.md §4.8 step 1.
func splitParentAndName(path string) (parent string, name string) {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return "/", path
	}
	parent = path[:idx]
	if parent == "" {
		parent = "/"
	}
	return parent, path[idx+1:]
}

// openPath resolves path without reading file content, per spec.md §4.6.
func (c *clusterIO) openPath(path string) (DirEntry, error) {
	return c.resolvePath(path)
}

// listDirPath resolves path and returns its directory entries, per
// spec.md §4.6. path must resolve to a directory.
func (c *clusterIO) listDirPath(path string) ([]DirEntry, error) {
	entry, err := c.resolvePath(path)
	if err != nil {
		return nil, err
	}
	if !entry.IsDir {
		return nil, fserr.Newf(fserr.NotADirectory, "%q is not a directory", path)
	}
	return c.readDirectory(entry.FirstCluster)
}

// listRoot returns the root directory's entries.
func (c *clusterIO) listRoot() ([]DirEntry, error) {
	return c.readDirectory(c.geo.RootCluster)
}
