package fetch

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/rsql/pkg/driver"
)

type visitedKey struct{}

// markVisited records a decompression pass in the context. A chain that
// revisits the same compression type is cyclic and fails.
func markVisited(ctx context.Context, ft driver.FileType) (context.Context, error) {
	visited, _ := ctx.Value(visitedKey{}).(map[driver.FileType]bool)
	if visited[ft] {
		return nil, driver.IOErrorf("compression cycle detected: %s already decompressed", string(ft))
	}
	next := make(map[driver.FileType]bool, len(visited)+1)
	for k := range visited {
		next[k] = true
	}
	next[ft] = true
	return context.WithValue(ctx, visitedKey{}, next), nil
}

// Decompress runs one layer of a decompression chain: it streams the file
// behind rawURL through decode into a temp file with the compression
// extension stripped, then re-dispatches the result. The returned
// connection owns the temp dir.
func Decompress(ctx context.Context, rawURL string, ft driver.FileType, decode func(io.Reader) (io.Reader, error)) (driver.Connection, error) {
	ctx, err := markVisited(ctx, ft)
	if err != nil {
		return nil, err
	}
	path, err := driver.FilePath(rawURL)
	if err != nil {
		return nil, err
	}

	dir, err := TempDir()
	if err != nil {
		return nil, err
	}
	out, err := decompressFile(path, dir, ft, decode)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}

	conn, err := Dispatch(ctx, out, "", rawURL)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	return WithCleanup(conn, func() { _ = os.RemoveAll(dir) }), nil
}

func decompressFile(path, dir string, ft driver.FileType, decode func(io.Reader) (io.Reader, error)) (string, error) {
	name := filepath.Base(path)
	if driver.FileTypeFromExtension(name) == ft {
		name = name[:len(name)-len(filepath.Ext(name))]
	}
	if name == "" || name == "." {
		name = "decompressed"
	}

	in, err := os.Open(path)
	if err != nil {
		return "", driver.IOError(err)
	}
	defer func() { _ = in.Close() }()

	decoded, err := decode(in)
	if err != nil {
		return "", driver.IOError(err)
	}
	return Save(dir, name, decoded)
}
