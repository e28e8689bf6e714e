package validation

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// BundleType is the container format of a translation bundle.
type BundleType string

const (
	BundleSQLite  BundleType = "sqlite"
	BundleXZ      BundleType = "xz"
	BundleTarXZ   BundleType = "tar.xz"
	BundleTarGZ   BundleType = "tar.gz"
	BundleUnknown BundleType = "unknown"
)

var (
	magicSQLite = []byte("SQLite format 3\x00")
	magicXZ     = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}
	magicGzip   = []byte{0x1f, 0x8b}
)

// DetectBundle reads the header of r and checks it against the extension
// of name. Compressed tarballs can only be told apart from plain
// compressed files by name, so a .tar.xz is accepted when the content is xz.
func DetectBundle(r io.Reader, name string) (BundleType, error) {
	buf := make([]byte, 16)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return BundleUnknown, fmt.Errorf("failed to read bundle header: %w", err)
	}
	buf = buf[:n]

	var content BundleType
	switch {
	case bytes.HasPrefix(buf, magicSQLite):
		content = BundleSQLite
	case bytes.HasPrefix(buf, magicXZ):
		content = BundleXZ
	case bytes.HasPrefix(buf, magicGzip):
		content = BundleTarGZ
	default:
		return BundleUnknown, fmt.Errorf("unrecognized bundle content in %s", name)
	}

	want := bundleTypeFromName(name)
	switch {
	case want == BundleUnknown:
		return content, nil
	case want == BundleTarXZ && content == BundleXZ:
		return BundleTarXZ, nil
	case want == content:
		return content, nil
	}
	return BundleUnknown, fmt.Errorf("bundle type mismatch: extension suggests %s but content is %s", want, content)
}

func bundleTypeFromName(name string) BundleType {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".tar.xz"), strings.HasSuffix(lower, ".txz"):
		return BundleTarXZ
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return BundleTarGZ
	case strings.HasSuffix(lower, ".xz"):
		return BundleXZ
	case strings.HasSuffix(lower, ".sqlite"), strings.HasSuffix(lower, ".sqlite3"),
		strings.HasSuffix(lower, ".db"), strings.HasSuffix(lower, ".bblx"):
		return BundleSQLite
	}
	return BundleUnknown
}
