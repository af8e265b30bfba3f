package backup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// FileSink writes backups into a local directory.
type FileSink struct {
	dir string
}

var (
	_ Sink   = (*FileSink)(nil)
	_ Getter = (*FileSink)(nil)
)

// NewFileSink returns a sink writing under dir, creating it if needed.
func NewFileSink(dir string) (*FileSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("backup: file sink: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

func (f *FileSink) Name() string { return "file:" + f.dir }

// Put replaces key atomically by writing a temporary file and renaming it.
func (f *FileSink) Put(_ context.Context, key string, data []byte) error {
	tmp, err := os.CreateTemp(f.dir, ".haulage-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(f.dir, key))
}

func (f *FileSink) Get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(f.dir, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNoBackup
	}
	return data, err
}
