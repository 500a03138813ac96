package backup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nvandessel/womsim/internal/store"
)

func writeTestArchive(t *testing.T, runs int) string {
	t.Helper()
	a := &Archive{
		Version:   FormatVersion,
		CreatedAt: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	for i := 0; i < runs; i++ {
		a.Runs = append(a.Runs, *testRun(t, "archived", int64(i+1)))
	}
	path := filepath.Join(t.TempDir(), "test.archive")
	if _, err := writeArchive(path, a); err != nil {
		t.Fatalf("writeArchive failed: %v", err)
	}
	return path
}

func TestWriteReadArchive(t *testing.T) {
	path := writeTestArchive(t, 2)

	archive, err := ReadArchive(path)
	if err != nil {
		t.Fatalf("ReadArchive failed: %v", err)
	}
	if archive.Version != FormatVersion {
		t.Errorf("expected version %d, got %d", FormatVersion, archive.Version)
	}
	if len(archive.Runs) != 2 {
		t.Errorf("expected 2 runs, got %d", len(archive.Runs))
	}
	if archive.Runs[0].Name != "archived" {
		t.Errorf("unexpected run name %q", archive.Runs[0].Name)
	}
}

func TestReadHeader(t *testing.T) {
	path := writeTestArchive(t, 3)

	header, err := ReadHeader(path)
	if err != nil {
		t.Fatalf("ReadHeader failed: %v", err)
	}
	if header.Version != FormatVersion {
		t.Errorf("expected version %d, got %d", FormatVersion, header.Version)
	}
	if header.RunCount != 3 {
		t.Errorf("expected run count 3, got %d", header.RunCount)
	}
	if !header.Compressed {
		t.Error("expected compressed flag set")
	}
	if !strings.HasPrefix(header.Checksum, "sha256:") {
		t.Errorf("unexpected checksum format: %s", header.Checksum)
	}
	wantTime := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	if !header.CreatedAt.Equal(wantTime) {
		t.Errorf("expected created_at %v, got %v", wantTime, header.CreatedAt)
	}
}

func TestVerifyChecksum(t *testing.T) {
	path := writeTestArchive(t, 1)

	if err := VerifyChecksum(path); err != nil {
		t.Fatalf("VerifyChecksum failed on intact archive: %v", err)
	}
}

func TestVerifyChecksum_CorruptPayload(t *testing.T) {
	path := writeTestArchive(t, 1)

	// Flip a byte in the compressed payload, past the header line.
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	newline := strings.IndexByte(string(data), '\n')
	if newline < 0 || newline+10 >= len(data) {
		t.Fatal("archive too small to corrupt")
	}
	data[newline+10] ^= 0xff
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatal(err)
	}

	if err := VerifyChecksum(path); err == nil {
		t.Fatal("expected checksum mismatch on corrupted archive")
	}
	if _, err := ReadArchive(path); err == nil {
		t.Fatal("expected ReadArchive to reject corrupted archive")
	}
}

func TestReadHeader_UnsupportedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "future.archive")
	content := `{"version":99,"created_at":"2026-08-01T12:00:00Z","checksum":"sha256:00","run_count":0,"compressed":true}` + "\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadHeader(path); err == nil {
		t.Fatal("expected error for unsupported version")
	}
}

func TestReadHeader_NotAnArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.archive")
	if err := os.WriteFile(path, []byte("not json at all\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := ReadHeader(path); err == nil {
		t.Fatal("expected error for non-archive file")
	}
}

func TestWriteArchive_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "backups")
	path := filepath.Join(dir, "test.archive")

	a := &Archive{
		Version:   FormatVersion,
		CreatedAt: time.Now().UTC(),
		Runs:      []store.RunRecord{*testRun(t, "x", 1)},
	}
	if _, err := writeArchive(path, a); err != nil {
		t.Fatalf("writeArchive failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected archive at %s: %v", path, err)
	}
}
