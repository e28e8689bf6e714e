package prefs

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/FocuswithJustin/JuniperScripture/core/canon"
	scerrors "github.com/FocuswithJustin/JuniperScripture/core/errors"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	p, err := Load(filepath.Join(t.TempDir(), "prefs.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if p.Translation != "" || p.LastAddress != nil {
		t.Errorf("unexpected saved state: %+v", p)
	}
	if p.FontSize != DefaultFontSize || p.ReadingMode != ModeScroll {
		t.Errorf("defaults = %+v", p)
	}
	if got := p.Position(); got != (canon.Address{Book: 1, Chapter: 1}) {
		t.Errorf("Position() = %v, want Genesis 1", got)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.yaml")

	p := Default()
	p.Translation = "asv"
	p.SetPosition(canon.NewAddress(19, 23, 1))
	p.FontSize = 20
	p.ReadingMode = ModePaged
	if err := Save(path, p); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Translation != "asv" || got.FontSize != 20 || got.ReadingMode != ModePaged {
		t.Errorf("Load() = %+v", got)
	}
	if got.Position() != canon.NewAddress(19, 23, 1) {
		t.Errorf("Position() = %v", got.Position())
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".prefs-") {
			t.Errorf("temporary file %s left behind", e.Name())
		}
	}
}

func TestSaveFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	p := &Prefs{Translation: "kjv"}
	p.SetPosition(canon.Address{Book: 43, Chapter: 3})
	if err := Save(path, p); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "translation: kjv\nlast_address:\n    book: 43\n    chapter: 3\n"
	if string(data) != want {
		t.Errorf("file contents:\n%s\nwant:\n%s", data, want)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	if err := os.WriteFile(path, []byte("translation: web\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Translation != "web" || p.FontSize != DefaultFontSize || p.ReadingMode != ModeScroll {
		t.Errorf("Load() = %+v", p)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	if err := os.WriteFile(path, []byte("translation: [unterminated\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	var pe *scerrors.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Load() = %v, want *ParseError", err)
	}
	if pe.Format != "preferences" {
		t.Errorf("Format = %q", pe.Format)
	}
}

func TestValidate(t *testing.T) {
	bad := canon.Address{Book: 99, Chapter: 1}
	tests := []struct {
		name    string
		p       Prefs
		wantErr bool
	}{
		{"empty", Prefs{}, false},
		{"defaults", *Default(), false},
		{"font too small", Prefs{FontSize: 4}, true},
		{"font too large", Prefs{FontSize: 100}, true},
		{"unknown mode", Prefs{ReadingMode: "sideways"}, true},
		{"bad address", Prefs{LastAddress: &bad}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, scerrors.ErrInvalidInput) {
				t.Errorf("error %v should match ErrInvalidInput", err)
			}
		})
	}
}

func TestSaveRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	if err := Save(path, &Prefs{FontSize: 1}); err == nil {
		t.Fatal("Save should reject an invalid font size")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("nothing should be written for invalid preferences")
	}
}

func TestConcurrentUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.yaml")
	const writers = 20

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := Update(path, func(p *Prefs) { p.FontSize++ }); err != nil {
				t.Errorf("Update failed: %v", err)
			}
		}()
	}
	wg.Wait()

	p, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := DefaultFontSize + writers; p.FontSize != want {
		t.Errorf("FontSize = %d, want %d", p.FontSize, want)
	}
}
