package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// PlayedLog records which tournament pairings have finished, so an
// interrupted tournament resumes where it stopped. It is an append-only
// file with one key per line, read fully on open. A torn final line from a
// crash is just an unknown key and that pairing is replayed.
type PlayedLog struct {
	mu     sync.RWMutex
	file   *os.File
	played map[string]struct{}
}

func OpenPlayedLog(path string) (*PlayedLog, error) {
	if path == "" {
		return nil, fmt.Errorf("log path is required")
	}

	played := make(map[string]struct{})
	if f, err := os.Open(path); err == nil {
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if key := strings.TrimSpace(scanner.Text()); key != "" {
				played[key] = struct{}{}
			}
		}
		_ = f.Close()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &PlayedLog{file: file, played: played}, nil
}

func (l *PlayedLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func (l *PlayedLog) Has(key string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.played[key]
	return ok
}

func (l *PlayedLog) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.played)
}

// Add appends key and syncs. Known keys are ignored.
func (l *PlayedLog) Add(key string) error {
	if key == "" || strings.ContainsAny(key, "\r\n") {
		return fmt.Errorf("invalid key %q", key)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.played[key]; ok {
		return nil
	}
	if l.file == nil {
		return fmt.Errorf("log file is closed")
	}
	if _, err := l.file.WriteString(key + "\n"); err != nil {
		return fmt.Errorf("append log: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("sync log: %w", err)
	}
	l.played[key] = struct{}{}
	return nil
}
