package clustering

import (
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

var (
	// ErrModelNotFound is returned when no model artifact exists at the path.
	ErrModelNotFound = errors.New("clustering: model artifact not found")

	// ErrChecksumMismatch is returned when an artifact fails integrity checks.
	ErrChecksumMismatch = errors.New("clustering: model checksum mismatch")
)

// envelope is the on-disk form: metadata plus the gob'd centroids, whose
// SHA-256 is recorded in Meta.Checksum.
type envelope struct {
	Meta    Metadata
	Payload []byte
}

// Encode writes m as a gzip-compressed gob artifact and records the checksum
// on m.Meta.
func Encode(w io.Writer, m *Model) error {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(m.Centroids); err != nil {
		return fmt.Errorf("encode centroids: %w", err)
	}
	sum := sha256.Sum256(payload.Bytes())
	m.Meta.Checksum = hex.EncodeToString(sum[:])

	zw := gzip.NewWriter(w)
	if err := gob.NewEncoder(zw).Encode(envelope{Meta: m.Meta, Payload: payload.Bytes()}); err != nil {
		_ = zw.Close()
		return fmt.Errorf("encode model: %w", err)
	}
	return zw.Close()
}

// Decode reads an artifact written by Encode.
func Decode(r io.Reader) (*Model, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("open model stream: %w", err)
	}
	defer zr.Close()

	var env envelope
	if err := gob.NewDecoder(zr).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}

	sum := sha256.Sum256(env.Payload)
	if hex.EncodeToString(sum[:]) != env.Meta.Checksum {
		return nil, ErrChecksumMismatch
	}

	var centroids [][]float64
	if err := gob.NewDecoder(bytes.NewReader(env.Payload)).Decode(&centroids); err != nil {
		return nil, fmt.Errorf("decode centroids: %w", err)
	}
	if len(centroids) != env.Meta.K {
		return nil, fmt.Errorf("decode model: %d centroids, metadata says %d", len(centroids), env.Meta.K)
	}
	return &Model{Centroids: centroids, Meta: env.Meta}, nil
}

// FileStore persists a single model artifact at Path.
type FileStore struct {
	Path string
}

// NewFileStore creates a store for the artifact at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the artifact. A missing file yields ErrModelNotFound.
func (s *FileStore) Load() (*Model, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, s.Path)
		}
		return nil, fmt.Errorf("open model artifact: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// StagedFile is a fully written artifact that has not replaced the live one yet.
type StagedFile struct {
	tmpPath    string
	finalPath  string
	backupPath string
	committed  bool
}

// Stage writes m to a temporary file beside Path. The live artifact is not
// touched until Commit.
func (s *FileStore) Stage(m *Model) (*StagedFile, error) {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create model directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create temp artifact: %w", err)
	}
	if err := Encode(tmp, m); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return nil, err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("sync temp artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return nil, fmt.Errorf("close temp artifact: %w", err)
	}
	return &StagedFile{tmpPath: tmp.Name(), finalPath: s.Path}, nil
}

// Commit atomically replaces the live artifact. The previous artifact stays
// reachable through a hard link until Discard, so Rollback can restore it.
func (f *StagedFile) Commit() error {
	backup := f.tmpPath + ".prev"
	switch err := os.Link(f.finalPath, backup); {
	case err == nil:
		f.backupPath = backup
	case errors.Is(err, os.ErrNotExist):
	default:
		_ = os.Remove(f.tmpPath)
		return fmt.Errorf("keep previous model artifact: %w", err)
	}

	if err := os.Rename(f.tmpPath, f.finalPath); err != nil {
		_ = os.Remove(f.tmpPath)
		f.dropBackup()
		return fmt.Errorf("replace model artifact: %w", err)
	}
	f.committed = true
	return nil
}

// Rollback undoes a successful Commit: the previous artifact is restored, or
// the new one removed when there was none. It is a no-op before Commit.
func (f *StagedFile) Rollback() error {
	if !f.committed {
		return nil
	}
	f.committed = false
	if f.backupPath == "" {
		if err := os.Remove(f.finalPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove model artifact: %w", err)
		}
		return nil
	}
	if err := os.Rename(f.backupPath, f.finalPath); err != nil {
		return fmt.Errorf("restore previous model artifact: %w", err)
	}
	f.backupPath = ""
	return nil
}

// Discard removes the staged file and any kept previous artifact.
func (f *StagedFile) Discard() {
	_ = os.Remove(f.tmpPath)
	f.dropBackup()
}

func (f *StagedFile) dropBackup() {
	if f.backupPath != "" {
		_ = os.Remove(f.backupPath)
		f.backupPath = ""
	}
}
