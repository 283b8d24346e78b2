package logging

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

const gzExt = ".gz"

// RotationConfig mirrors the logging.max_size_mb, logging.max_backups and
// logging.compress settings.
type RotationConfig struct {
	// MaxSizeMB is the size at which picopala.log is rotated. 0 disables
	// rotation.
	MaxSizeMB int
	// MaxBackups is how many rotated files are kept. With 0, rotated data
	// is discarded.
	MaxBackups int
	// Compress gzips each rotated file.
	Compress bool
}

// DefaultRotationConfig matches the configuration defaults.
func DefaultRotationConfig() RotationConfig {
	return RotationConfig{MaxSizeMB: 5, MaxBackups: 3}
}

// RotatingWriter appends to a log file and moves it to path.1 once the next
// write would exceed the size limit; path.1 is always the newest backup.
//
// A failed rotation does not fail the write. It is recorded for LastError.
type RotatingWriter struct {
	mu sync.Mutex

	filePath   string
	maxSizeB   int64
	maxBackups int
	compress   bool

	file        *os.File
	currentSize int64
	lastErr     error
}

// NewRotatingWriter opens filePath for appending, creating its directory.
func NewRotatingWriter(filePath string, config RotationConfig) (*RotatingWriter, error) {
	rw := &RotatingWriter{
		filePath:   filePath,
		maxSizeB:   int64(config.MaxSizeMB) << 20,
		maxBackups: config.MaxBackups,
		compress:   config.Compress,
	}
	if err := rw.open(); err != nil {
		return nil, err
	}
	return rw, nil
}

func (rw *RotatingWriter) open() error {
	if err := os.MkdirAll(filepath.Dir(rw.filePath), 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	file, err := os.OpenFile(rw.filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}

	rw.file = file
	rw.currentSize = info.Size()
	return nil
}

func (rw *RotatingWriter) Write(p []byte) (int, error) {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.file == nil {
		return 0, errors.New("log file is closed")
	}

	// An empty file is never rotated, so a single oversized entry still lands.
	if rw.maxSizeB > 0 && rw.currentSize > 0 && rw.currentSize+int64(len(p)) > rw.maxSizeB {
		if err := rw.rotate(); err != nil {
			rw.lastErr = err
		}
		if rw.file == nil {
			return 0, rw.lastErr
		}
	}

	n, err := rw.file.Write(p)
	rw.currentSize += int64(n)
	return n, err
}

// rotate must be called with mu held. It always tries to leave a file open.
func (rw *RotatingWriter) rotate() error {
	if err := rw.file.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	rw.file = nil

	if rw.maxBackups <= 0 {
		if err := os.Remove(rw.filePath); err != nil && !os.IsNotExist(err) {
			return errors.Join(fmt.Errorf("failed to discard log file: %w", err), rw.open())
		}
		return rw.open()
	}

	removeBackup(rw.backupPath(rw.maxBackups))
	for i := rw.maxBackups - 1; i >= 1; i-- {
		moveBackup(rw.backupPath(i), rw.backupPath(i+1))
	}

	newest := rw.backupPath(1)
	if err := os.Rename(rw.filePath, newest); err != nil {
		return errors.Join(fmt.Errorf("failed to rename log file: %w", err), rw.open())
	}
	// Inline: the process may exit right after this write.
	if rw.compress {
		if err := gzipFile(newest); err != nil {
			rw.lastErr = err
		}
	}
	return rw.open()
}

func (rw *RotatingWriter) backupPath(n int) string {
	return fmt.Sprintf("%s.%d", rw.filePath, n)
}

// removeBackup deletes a backup in either form.
func removeBackup(path string) {
	_ = os.Remove(path)
	_ = os.Remove(path + gzExt)
}

// moveBackup renames a backup, keeping its compressed suffix if it has one.
func moveBackup(from, to string) {
	if _, err := os.Stat(from + gzExt); err == nil {
		_ = os.Rename(from+gzExt, to+gzExt)
		return
	}
	if _, err := os.Stat(from); err == nil {
		_ = os.Rename(from, to)
	}
}

// gzipFile replaces path with path.gz.
func gzipFile(path string) (err error) {
	src, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file for compression: %w", err)
	}
	defer func() { _ = src.Close() }()

	gzPath := path + gzExt
	dst, err := os.Create(gzPath)
	if err != nil {
		return fmt.Errorf("failed to create compressed log file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(gzPath)
		}
	}()

	gz := gzip.NewWriter(dst)
	if _, err = io.Copy(gz, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("failed to write compressed log data: %w", err)
	}
	if err = gz.Close(); err != nil {
		_ = dst.Close()
		return fmt.Errorf("failed to finalize compressed log file: %w", err)
	}
	if err = dst.Close(); err != nil {
		return fmt.Errorf("failed to close compressed log file: %w", err)
	}
	return os.Remove(path)
}

// Sync flushes the current file.
func (rw *RotatingWriter) Sync() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.file == nil {
		return nil
	}
	return rw.file.Sync()
}

// Close syncs and closes the file. Later writes fail.
func (rw *RotatingWriter) Close() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()

	if rw.file == nil {
		return nil
	}
	f := rw.file
	rw.file = nil

	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to sync log file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}

func (rw *RotatingWriter) CurrentSize() int64 {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return rw.currentSize
}

func (rw *RotatingWriter) FilePath() string {
	return rw.filePath
}

// LastError returns the most recent rotation failure, or nil.
func (rw *RotatingWriter) LastError() error {
	rw.mu.Lock()
	defer rw.mu.Unlock()
	return rw.lastErr
}
