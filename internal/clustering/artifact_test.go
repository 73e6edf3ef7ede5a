package clustering

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func sampleModel() *Model {
	return &Model{
		Centroids: [][]float64{{1, 2}, {3, 4}},
		Meta: Metadata{
			K:          2,
			Dimensions: 2,
			Seed:       42,
			Samples:    10,
			TrainedAt:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestEncodeDecode(t *testing.T) {
	m := sampleModel()
	var buf bytes.Buffer
	if err := Encode(&buf, m); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if m.Meta.Checksum == "" {
		t.Fatal("Encode() did not record checksum")
	}

	got, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if got.Meta.Checksum != m.Meta.Checksum {
		t.Errorf("Checksum = %q, want %q", got.Meta.Checksum, m.Meta.Checksum)
	}
	if c, _ := got.Assign([]float64{3.1, 3.9}); c != 2 {
		t.Errorf("decoded model Assign() = %d, want 2", c)
	}
}

func TestDecode_RejectsGarbage(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte("not a model"))); err == nil {
		t.Fatal("Decode() of garbage succeeded")
	}
}

func TestFileStore_LoadMissing(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "missing.gob.gz"))
	if _, err := s.Load(); !errors.Is(err, ErrModelNotFound) {
		t.Errorf("Load() error = %v, want ErrModelNotFound", err)
	}
}

func TestFileStore_StageCommitDiscard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models", "kmeans.gob.gz")
	s := NewFileStore(path)

	staged, err := s.Stage(sampleModel())
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("live artifact exists before Commit")
	}
	if err := staged.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	first, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// A discarded stage leaves the committed artifact untouched.
	other := sampleModel()
	other.Centroids = [][]float64{{9, 9}, {8, 8}}
	staged, err = s.Stage(other)
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	staged.Discard()

	again, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if again.Meta.Checksum != first.Meta.Checksum {
		t.Errorf("artifact changed after Discard")
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("directory has %d entries after Discard, want 1", len(entries))
	}
}

func TestStagedFile_Rollback(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kmeans.gob.gz")
	s := NewFileStore(path)

	staged, err := s.Stage(sampleModel())
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	if err := staged.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	staged.Discard()
	first, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	other := sampleModel()
	other.Centroids = [][]float64{{9, 9}, {8, 8}}
	staged, err = s.Stage(other)
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	if err := staged.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if m, _ := s.Load(); m == nil || m.Meta.Checksum == first.Meta.Checksum {
		t.Fatal("Commit() did not replace the artifact")
	}
	if err := staged.Rollback(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}
	staged.Discard()

	restored, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if restored.Meta.Checksum != first.Meta.Checksum {
		t.Errorf("Rollback() did not restore the previous artifact")
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("directory has %d entries after Rollback, want 1", len(entries))
	}
}

func TestStagedFile_RollbackWithoutPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kmeans.gob.gz")
	staged, err := NewFileStore(path).Stage(sampleModel())
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	if err := staged.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}
	if err := staged.Rollback(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}
	staged.Discard()
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("artifact still present after Rollback: %v", err)
	}
}
