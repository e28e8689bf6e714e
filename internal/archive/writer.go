package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/JuniperScripture/core/errors"
)

// Pack writes the translation source at src into a bundle at dst. The
// format follows dst's extension: .tar.xz, .tar.gz or .xz. Tarballs hold a
// single entry named after src.
func Pack(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.NewIO("open", src, err)
	}
	defer in.Close()
	info, err := in.Stat()
	if err != nil {
		return errors.NewIO("stat", src, err)
	}
	if !info.Mode().IsRegular() {
		return errors.NewValidation("source", src+" is not a regular file")
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.NewIO("create", filepath.Dir(dst), err)
	}
	out, err := os.Create(dst)
	if err != nil {
		return errors.NewIO("create", dst, err)
	}

	lower := strings.ToLower(dst)
	switch {
	case strings.HasSuffix(lower, ".tar.xz"):
		err = packTarXZ(out, in, info)
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		err = packTarGZ(out, in, info)
	case strings.HasSuffix(lower, ".xz"):
		err = packXZ(out, in)
	default:
		err = errors.NewUnsupported("bundle", "unknown extension on "+dst)
	}
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}

func packXZ(w io.Writer, src io.Reader) error {
	xw, err := xz.NewWriter(w)
	if err != nil {
		return fmt.Errorf("xz writer: %w", err)
	}
	if _, err := io.Copy(xw, src); err != nil {
		return fmt.Errorf("compress: %w", err)
	}
	return xw.Close()
}

func packTarXZ(w io.Writer, src io.Reader, info os.FileInfo) error {
	xw, err := xz.NewWriter(w)
	if err != nil {
		return fmt.Errorf("xz writer: %w", err)
	}
	if err := writeTar(xw, src, info); err != nil {
		return err
	}
	return xw.Close()
}

func packTarGZ(w io.Writer, src io.Reader, info os.FileInfo) error {
	gw := gzip.NewWriter(w)
	if err := writeTar(gw, src, info); err != nil {
		return err
	}
	return gw.Close()
}

func writeTar(w io.Writer, src io.Reader, info os.FileInfo) error {
	tw := tar.NewWriter(w)
	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}
	header.Name = info.Name()
	// Fixed timestamp keeps bundles reproducible.
	header.ModTime = time.Unix(0, 0).UTC()
	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := io.Copy(tw, src); err != nil {
		return fmt.Errorf("write %s: %w", header.Name, err)
	}
	return tw.Close()
}
