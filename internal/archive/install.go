package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ulikunitz/xz"

	"github.com/FocuswithJustin/JuniperScripture/core/errors"
	"github.com/FocuswithJustin/JuniperScripture/internal/catalog"
	"github.com/FocuswithJustin/JuniperScripture/internal/logging"
	"github.com/FocuswithJustin/JuniperScripture/internal/validation"
)

// Result describes an installed translation.
type Result struct {
	Path   string
	Bundle validation.BundleType
	Report *validation.Report
}

// InstallBundle unpacks bundle into dataDir under d's source name. The
// unpacked source is checked with validation.CheckTranslation and, when d
// carries a checksum, against it before it replaces any existing file.
// Data-quality issues do not fail the install; they are returned in the
// report.
func InstallBundle(bundle, dataDir string, d catalog.Descriptor) (*Result, error) {
	if err := validation.ValidatePath(bundle); err != nil {
		return nil, &errors.ValidationError{Field: "bundle", Value: bundle, Message: err.Error(), Err: err}
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	rel, err := validation.SanitizePath(dataDir, d.Source)
	if err != nil {
		return nil, &errors.ValidationError{Field: "source", Value: d.Source, Message: err.Error(), Err: err}
	}
	target := filepath.Join(dataDir, rel)

	kind, err := detect(bundle)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return nil, errors.NewIO("create", filepath.Dir(target), err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".install-*")
	if err != nil {
		return nil, errors.NewIO("create", filepath.Dir(target), err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	switch kind {
	case validation.BundleSQLite:
		err = copyFile(tmp, bundle)
	case validation.BundleXZ:
		err = unxz(tmp, bundle)
	case validation.BundleTarXZ, validation.BundleTarGZ:
		err = extractSource(tmp, bundle, filepath.Base(d.Source))
	}
	if err != nil {
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, errors.NewIO("write", tmpName, err)
	}

	report, err := validation.CheckTranslation(tmpName, d)
	if err != nil {
		return nil, err
	}
	if d.Checksum != "" && !strings.EqualFold(report.Checksum, d.Checksum) {
		return nil, &errors.ValidationError{
			Field:   "checksum",
			Value:   report.Checksum,
			Message: fmt.Sprintf("translation %s: checksum mismatch (want %s)", d.ID, d.Checksum),
		}
	}
	report.Path = target

	if err := os.Rename(tmpName, target); err != nil {
		return nil, errors.NewIO("rename", target, err)
	}
	committed = true

	logging.TranslationEvent("install", d.ID,
		"bundle", string(kind),
		"path", target,
		"rows", report.Rows,
		"issues", len(report.Issues),
	)
	return &Result{Path: target, Bundle: kind, Report: report}, nil
}

func copyFile(dst io.Writer, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return errors.NewIO("open", src, err)
	}
	defer f.Close()
	return copyLimited(dst, f, src)
}

func unxz(dst io.Writer, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return errors.NewIO("open", src, err)
	}
	defer f.Close()
	xzr, err := xz.NewReader(f)
	if err != nil {
		return fmt.Errorf("xz reader: %w", err)
	}
	return copyLimited(dst, xzr, src)
}

// extractSource copies the tar entry named want into dst. When no entry has
// that base name, a tarball with exactly one regular file is accepted.
func extractSource(dst io.Writer, bundle, want string) error {
	entries, err := Entries(bundle)
	if err != nil {
		return err
	}
	pick := ""
	for _, name := range entries {
		if path.Base(name) == want {
			pick = name
			break
		}
	}
	if pick == "" && len(entries) == 1 {
		pick = entries[0]
	}
	if pick == "" {
		return errors.NewNotFound("bundle entry", want)
	}
	if err := validation.ValidateFilename(path.Base(pick)); err != nil {
		return &errors.ValidationError{Field: "entry", Value: pick, Message: err.Error(), Err: err}
	}

	found := false
	err = Walk(bundle, func(h *tar.Header, r io.Reader) (bool, error) {
		if h.Typeflag != tar.TypeReg || h.Name != pick {
			return false, nil
		}
		found = true
		return true, copyLimited(dst, r, bundle)
	})
	if err != nil {
		return err
	}
	if !found {
		return errors.NewNotFound("bundle entry", pick)
	}
	return nil
}

func copyLimited(dst io.Writer, src io.Reader, name string) error {
	n, err := io.Copy(dst, io.LimitReader(src, validation.MaxFileSize+1))
	if err != nil {
		return errors.NewIO("extract", name, err)
	}
	if n > validation.MaxFileSize {
		return &errors.ValidationError{
			Field:   "bundle",
			Value:   name,
			Message: fmt.Sprintf("unpacked source exceeds %d bytes", validation.MaxFileSize),
		}
	}
	return nil
}
