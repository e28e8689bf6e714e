package archive

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	scerrors "github.com/FocuswithJustin/JuniperScripture/core/errors"
	"github.com/FocuswithJustin/JuniperScripture/internal/catalog"
	"github.com/FocuswithJustin/JuniperScripture/internal/store"
	"github.com/FocuswithJustin/JuniperScripture/internal/testutil"
	"github.com/FocuswithJustin/JuniperScripture/internal/validation"
)

// writeSource builds a translation source for d in a scratch directory.
func writeSource(t *testing.T, d catalog.Descriptor) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), d.Source)
	testutil.WriteTranslation(t, src, d, testutil.SampleRows(""))
	return src
}

func createTarGz(t *testing.T, path string, files map[string][]byte) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create file: %v", err)
	}
	defer f.Close()

	gw := gzip.NewWriter(f)
	tw := tar.NewWriter(gw)
	for name, content := range files {
		if err := tw.WriteHeader(&tar.Header{
			Name:     name,
			Mode:     0644,
			Size:     int64(len(content)),
			Typeflag: tar.TypeReg,
		}); err != nil {
			t.Fatalf("write header: %v", err)
		}
		if _, err := tw.Write(content); err != nil {
			t.Fatalf("write content: %v", err)
		}
	}
	tw.Close()
	gw.Close()
}

func assertNoTemp(t *testing.T, dir string) {
	t.Helper()
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".install-") {
			t.Errorf("temporary file %s left behind", e.Name())
		}
	}
}

func TestPackAndInstall(t *testing.T) {
	d := testutil.Descriptor("kjv", "verses", "book")

	tests := []struct {
		name   string
		bundle string
		want   validation.BundleType
	}{
		{"tar.xz", "kjv.tar.xz", validation.BundleTarXZ},
		{"tar.gz", "kjv.tar.gz", validation.BundleTarGZ},
		{"xz", "kjv.SQLite3.xz", validation.BundleXZ},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := writeSource(t, d)
			bundle := filepath.Join(t.TempDir(), tt.bundle)
			if err := Pack(src, bundle); err != nil {
				t.Fatalf("Pack failed: %v", err)
			}

			dataDir := t.TempDir()
			res, err := InstallBundle(bundle, dataDir, d)
			if err != nil {
				t.Fatalf("InstallBundle failed: %v", err)
			}
			if res.Bundle != tt.want {
				t.Errorf("Bundle = %s, want %s", res.Bundle, tt.want)
			}
			if res.Path != filepath.Join(dataDir, d.Source) {
				t.Errorf("Path = %s", res.Path)
			}
			if !res.Report.OK() || res.Report.Rows != 8 {
				t.Errorf("Report = %+v", res.Report)
			}
			assertNoTemp(t, dataDir)

			cat := catalog.MustNew(dataDir, d)
			if !cat.IsAvailable(d) {
				t.Fatal("installed translation is not available")
			}
			st := store.New(cat)
			defer st.Close()
			if err := st.Open(d); err != nil {
				t.Fatalf("Open installed translation: %v", err)
			}
			verses, err := st.LoadVerses(1, 1)
			if err != nil || len(verses) != 3 {
				t.Errorf("LoadVerses = %d verses, %v", len(verses), err)
			}
		})
	}
}

func TestInstallPlainSource(t *testing.T) {
	d := testutil.Descriptor("ylt", "t_ylt", "b")
	src := writeSource(t, d)
	dataDir := t.TempDir()

	res, err := InstallBundle(src, dataDir, d)
	if err != nil {
		t.Fatalf("InstallBundle failed: %v", err)
	}
	if res.Bundle != validation.BundleSQLite {
		t.Errorf("Bundle = %s", res.Bundle)
	}
	want, _ := catalog.FingerprintFile(src)
	if res.Report.Checksum != want {
		t.Errorf("installed checksum %s differs from source %s", res.Report.Checksum, want)
	}
}

func TestInstallSingleEntryTarball(t *testing.T) {
	d := testutil.Descriptor("asv", "asv_verses", "book_id")
	data, err := os.ReadFile(writeSource(t, d))
	if err != nil {
		t.Fatal(err)
	}
	bundle := filepath.Join(t.TempDir(), "asv.tar.gz")
	createTarGz(t, bundle, map[string][]byte{"release/American Standard.db": data})

	if _, err := InstallBundle(bundle, t.TempDir(), d); err != nil {
		t.Fatalf("InstallBundle failed: %v", err)
	}
}

func TestInstallPicksNamedEntry(t *testing.T) {
	d := testutil.Descriptor("asv", "asv_verses", "book_id")
	data, err := os.ReadFile(writeSource(t, d))
	if err != nil {
		t.Fatal(err)
	}
	bundle := filepath.Join(t.TempDir(), "asv.tar.gz")
	createTarGz(t, bundle, map[string][]byte{
		"asv/README":       []byte("American Standard Version"),
		"asv/" + d.Source: data,
	})

	res, err := InstallBundle(bundle, t.TempDir(), d)
	if err != nil {
		t.Fatalf("InstallBundle failed: %v", err)
	}
	if res.Report.Rows != 8 {
		t.Errorf("Rows = %d", res.Report.Rows)
	}

	names, err := Entries(bundle)
	if err != nil || len(names) != 2 {
		t.Errorf("Entries() = %v, %v", names, err)
	}
}

func TestInstallErrors(t *testing.T) {
	d := testutil.Descriptor("kjv", "verses", "book")
	dir := t.TempDir()

	ambiguous := filepath.Join(dir, "two.tar.gz")
	createTarGz(t, ambiguous, map[string][]byte{"a.db": []byte("a"), "b.db": []byte("b")})

	garbage := filepath.Join(dir, "garbage.tar.gz")
	createTarGz(t, garbage, map[string][]byte{d.Source: []byte("not a database at all, only some text")})

	text := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(text, []byte("hello"), 0644); err != nil {
		t.Fatal(err)
	}

	wrongSum := d
	wrongSum.Checksum = strings.Repeat("ab", 32)
	good := filepath.Join(dir, "good.tar.xz")
	if err := Pack(writeSource(t, d), good); err != nil {
		t.Fatal(err)
	}

	escaping := d
	escaping.Source = "../outside.db"

	tests := []struct {
		name   string
		bundle string
		d      catalog.Descriptor
		want   error
	}{
		{"no matching entry", ambiguous, d, scerrors.ErrNotFound},
		{"not a database", garbage, d, scerrors.ErrOpenFailed},
		{"unknown content", text, d, scerrors.ErrUnsupported},
		{"checksum mismatch", good, wrongSum, scerrors.ErrInvalidInput},
		{"source escapes data dir", good, escaping, validation.ErrPathTraversal},
		{"missing bundle", filepath.Join(dir, "nope.tar.xz"), d, os.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dataDir := t.TempDir()
			_, err := InstallBundle(tt.bundle, dataDir, tt.d)
			if !errors.Is(err, tt.want) {
				t.Fatalf("InstallBundle = %v, want %v", err, tt.want)
			}
			if _, err := os.Stat(filepath.Join(dataDir, d.Source)); !os.IsNotExist(err) {
				t.Error("failed install left a source behind")
			}
			assertNoTemp(t, dataDir)
		})
	}
}

func TestInstallReplacesExisting(t *testing.T) {
	d := testutil.Descriptor("kjv", "verses", "book")
	dataDir := t.TempDir()
	target := filepath.Join(dataDir, d.Source)
	if err := os.WriteFile(target, []byte("stale"), 0644); err != nil {
		t.Fatal(err)
	}

	bundle := filepath.Join(t.TempDir(), "kjv.tar.xz")
	if err := Pack(writeSource(t, d), bundle); err != nil {
		t.Fatal(err)
	}
	if _, err := InstallBundle(bundle, dataDir, d); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "SQLite format 3") {
		t.Error("existing source was not replaced")
	}
}

func TestNewReaderRejectsNonTarball(t *testing.T) {
	d := testutil.Descriptor("kjv", "verses", "book")
	src := writeSource(t, d)
	if _, err := NewReader(src); !errors.Is(err, scerrors.ErrUnsupported) {
		t.Errorf("NewReader(sqlite) = %v, want ErrUnsupported", err)
	}

	xzBundle := filepath.Join(t.TempDir(), "kjv.SQLite3.xz")
	if err := Pack(src, xzBundle); err != nil {
		t.Fatal(err)
	}
	if _, err := NewReader(xzBundle); !errors.Is(err, scerrors.ErrUnsupported) {
		t.Errorf("NewReader(xz) = %v, want ErrUnsupported", err)
	}
}

func TestPackErrors(t *testing.T) {
	d := testutil.Descriptor("kjv", "verses", "book")
	src := writeSource(t, d)
	dir := t.TempDir()

	if err := Pack(src, filepath.Join(dir, "kjv.zip")); !errors.Is(err, scerrors.ErrUnsupported) {
		t.Errorf("Pack(.zip) = %v, want ErrUnsupported", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "kjv.zip")); !os.IsNotExist(err) {
		t.Error("failed Pack left output behind")
	}
	if err := Pack(dir, filepath.Join(dir, "dir.tar.xz")); !errors.Is(err, scerrors.ErrInvalidInput) {
		t.Errorf("Pack(dir) = %v, want ErrInvalidInput", err)
	}
	if err := Pack(filepath.Join(dir, "missing"), filepath.Join(dir, "m.xz")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Pack(missing) = %v, want ErrNotExist", err)
	}
}
