package tokenstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/Mutombe/silver-carbon/internal/models"
)

// File хранит пару в JSON-файле {"access": "...", "refresh": "..."}.
// Запись — через временный файл и rename в том же каталоге.
type File struct {
	path string
	mu   sync.Mutex
}

// NewFile — path пустой — ~/.config/silver/tokens.json.
func NewFile(path string) (*File, error) {
	const op = "tokenstore.NewFile"

	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		path = filepath.Join(dir, "silver", Key+".json")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &File{path: path}, nil
}

// Path — путь к файлу с токенами.
func (f *File) Path() string { return f.path }

func (f *File) Get(_ context.Context) (models.TokenPair, bool, error) {
	const op = "tokenstore.File.Get"

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.TokenPair{}, false, nil
		}

		return models.TokenPair{}, false, fmt.Errorf("%s: %w", op, err)
	}

	var pair models.TokenPair
	if err := json.Unmarshal(data, &pair); err != nil {
		return models.TokenPair{}, false, fmt.Errorf("%s: %w", op, err)
	}

	if !pair.Valid() {
		return models.TokenPair{}, false, nil
	}

	return pair, true, nil
}

func (f *File) Set(_ context.Context, pair models.TokenPair) error {
	const op = "tokenstore.File.Set"

	if !pair.Valid() {
		return ErrInvalidPair
	}

	data, err := json.Marshal(pair)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(f.path), "."+Key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if err := tmp.Chmod(0o600); err != nil {
		cleanup()
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (f *File) Clear(_ context.Context) error {
	const op = "tokenstore.File.Clear"

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (f *File) Close() error { return nil }
