// Package packaging builds single-file Lambda deployment packages.
package packaging

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Package is a zip written to a temporary path.
type Package struct {
	Path       string
	Bytes      []byte
	CodeSha256 string // base64 sha256, the encoding Lambda reports
	HexSha256  string
}

// EntryName is the name the source gets inside the archive:
// override when set, otherwise <function-name><source-ext>.
func EntryName(functionName, source, override string) string {
	if override != "" {
		return override
	}
	return functionName + filepath.Ext(source)
}

// Build zips source as the only entry of a new archive in the temp directory.
// The entry keeps the source's mode and modification time so an unchanged
// source always yields the same bytes.
func Build(source, entryName string) (*Package, error) {
	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("reading source file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("source %s is a directory", source)
	}

	tmp, err := os.CreateTemp("", "wanwu-*.zip")
	if err != nil {
		return nil, fmt.Errorf("creating package file: %w", err)
	}
	defer tmp.Close()

	if err := writeArchive(tmp, source, entryName, info); err != nil {
		os.Remove(tmp.Name())
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("closing package file: %w", err)
	}

	bs, err := os.ReadFile(tmp.Name())
	if err != nil {
		return nil, fmt.Errorf("reading package file: %w", err)
	}
	sum := sha256.Sum256(bs)
	return &Package{
		Path:       tmp.Name(),
		Bytes:      bs,
		CodeSha256: base64.StdEncoding.EncodeToString(sum[:]),
		HexSha256:  hex.EncodeToString(sum[:]),
	}, nil
}

func writeArchive(w io.Writer, source, entryName string, info os.FileInfo) error {
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("building zip header: %w", err)
	}
	header.Name = entryName
	header.Method = zip.Deflate

	src, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("opening source file: %w", err)
	}
	defer src.Close()

	zw := zip.NewWriter(w)
	entry, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("adding %s to package: %w", entryName, err)
	}
	if _, err := io.Copy(entry, src); err != nil {
		return fmt.Errorf("writing %s to package: %w", entryName, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finishing package: %w", err)
	}
	return nil
}

// Remove deletes the temporary archive.
func (p *Package) Remove() error {
	return os.Remove(p.Path)
}
