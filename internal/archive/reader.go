// Package archive reads and writes compressed translation bundles and
// installs them into a data directory.
//
// A bundle is either a bare SQLite file, an xz-compressed SQLite file, or a
// .tar.xz/.tar.gz archive holding the translation's source file.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/JuniperScripture/core/errors"
	"github.com/FocuswithJustin/JuniperScripture/internal/validation"
)

// Reader wraps a tar.Reader with decompression chosen from the bundle's
// detected type.
type Reader struct {
	*tar.Reader
	file         *os.File
	decompressor io.Closer
}

// NewReader opens the tarball at path. Plain SQLite and bare .xz bundles are
// not tarballs and are rejected.
func NewReader(path string) (*Reader, error) {
	kind, err := detect(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}

	var r io.Reader
	var decompressor io.Closer
	switch kind {
	case validation.BundleTarXZ:
		xzr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("xz reader: %w", err)
		}
		r = xzr
	case validation.BundleTarGZ:
		gzr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		r = gzr
		decompressor = gzr
	default:
		f.Close()
		return nil, errors.NewUnsupported("archive", fmt.Sprintf("%s is a %s bundle, not a tarball", path, kind))
	}

	return &Reader{Reader: tar.NewReader(r), file: f, decompressor: decompressor}, nil
}

// Close closes the decompressor and the underlying file.
func (r *Reader) Close() error {
	var first error
	if r.decompressor != nil {
		first = r.decompressor.Close()
	}
	if err := r.file.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

// Visitor is called for each archive entry. Returning stop ends the walk.
type Visitor func(header *tar.Header, content io.Reader) (stop bool, err error)

// Iterate walks the archive entries in order.
func (r *Reader) Iterate(visit Visitor) error {
	for {
		header, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}
		stop, err := visit(header, r)
		if err != nil {
			return err
		}
		if stop {
			return nil
		}
	}
}

// Walk opens the tarball at path and iterates its entries.
func Walk(path string, visit Visitor) error {
	r, err := NewReader(path)
	if err != nil {
		return err
	}
	defer r.Close()
	return r.Iterate(visit)
}

// Entries lists the regular files in the tarball at path.
func Entries(path string) ([]string, error) {
	var names []string
	err := Walk(path, func(h *tar.Header, _ io.Reader) (bool, error) {
		if h.Typeflag == tar.TypeReg {
			names = append(names, h.Name)
		}
		return false, nil
	})
	return names, err
}

func detect(path string) (validation.BundleType, error) {
	f, err := os.Open(path)
	if err != nil {
		return validation.BundleUnknown, errors.NewIO("open", path, err)
	}
	defer f.Close()
	kind, err := validation.DetectBundle(f, path)
	if err != nil {
		return validation.BundleUnknown, &errors.ValidationError{Field: "bundle", Value: path, Message: err.Error(), Err: errors.ErrUnsupported}
	}
	return kind, nil
}
