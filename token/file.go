package token

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"
)

// FileStore keeps the token in a single file readable only by the owner.
// A missing file means no token.
type FileStore struct {
	path  string
	clock clockwork.Clock
	mu    sync.Mutex
}

// NewFileStore returns a store backed by path. The file and its directory
// are created on the first SetToken.
func NewFileStore(path string, clock clockwork.Clock) *FileStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &FileStore{path: path, clock: clock}
}

// Path returns the backing file.
func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Token(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}

	token := strings.TrimSpace(string(data))
	if token != "" && expired(token, s.clock.Now()) {
		if err := s.remove(); err != nil {
			return "", err
		}
		return "", nil
	}

	return token, nil
}

func (s *FileStore) SetToken(_ context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	if expired(token, s.clock.Now()) {
		return ErrExpired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return fmt.Errorf("create token file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.WriteString(token); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write token file: %w", err)
	}

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod token file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close token file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace token file: %w", err)
	}

	return nil
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.remove()
}

func (s *FileStore) remove() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}
