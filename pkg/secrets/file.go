package secrets

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// FileProvider loads secrets from a single YAML file mapping names to
// values:
//
//	openai-api-key: sk-abc123
//	anthropic-api-key: sk-ant-xyz
//
// The file must not be readable by group or other: permissions are
// validated to be 0600 or 0400. With watching enabled the provider
// reloads the file when it changes, so rotated credentials take effect
// without a restart.
type FileProvider struct {
	Path  string
	Watch bool

	mu      sync.RWMutex
	values  map[string]string
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	logger  *slog.Logger
}

// NewFileProvider creates a file-based secret provider and performs the
// initial load. Construction fails when the file is missing, unreadable,
// malformed, or has insecure permissions.
func NewFileProvider(path string, watch bool) (*FileProvider, error) {
	p := &FileProvider{
		Path:   path,
		Watch:  watch,
		values: make(map[string]string),
		stopCh: make(chan struct{}),
		logger: slog.Default().With("component", "secrets.file"),
	}

	if err := p.load(); err != nil {
		return nil, err
	}

	if watch {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return nil, fmt.Errorf("failed to create file watcher: %w", err)
		}
		// Watch the parent directory: editors and rotation tools replace
		// the file, which would orphan a watch on the file itself.
		if err := watcher.Add(filepath.Dir(path)); err != nil {
			_ = watcher.Close()
			return nil, fmt.Errorf("failed to watch secrets directory: %w", err)
		}

		p.watcher = watcher
		go p.watchLoop()

		p.logger.Info("file secret provider started with watching", "path", path)
	} else {
		p.logger.Info("file secret provider started", "path", path)
	}

	return p, nil
}

// GetSecret retrieves a secret from the loaded file.
func (p *FileProvider) GetSecret(ctx context.Context, name string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	value, ok := p.values[name]
	if !ok {
		return "", fmt.Errorf("secret not found in file: %s", name)
	}
	return value, nil
}

// ListSecrets returns the secret names present in the file.
func (p *FileProvider) ListSecrets(ctx context.Context) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.values))
	for name := range p.values {
		names = append(names, name)
	}
	return names, nil
}

// Source returns the provider name.
func (p *FileProvider) Source() string {
	return "file"
}

// Supports reports whether the file currently holds the named secret.
func (p *FileProvider) Supports(name string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, ok := p.values[name]
	return ok
}

// Refresh reloads the secrets file.
func (p *FileProvider) Refresh(ctx context.Context) error {
	return p.load()
}

// Close stops the file watcher.
func (p *FileProvider) Close() error {
	if p.watcher != nil {
		close(p.stopCh)
		return p.watcher.Close()
	}
	return nil
}

func (p *FileProvider) load() error {
	info, err := os.Stat(p.Path)
	if err != nil {
		return fmt.Errorf("failed to stat secrets file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("secrets path is not a regular file: %s", p.Path)
	}
	if mode := info.Mode().Perm(); mode != 0o600 && mode != 0o400 {
		return fmt.Errorf("insecure permissions on %s: %o (expected 0600 or 0400)", p.Path, mode)
	}

	data, err := os.ReadFile(p.Path)
	if err != nil {
		return fmt.Errorf("failed to read secrets file: %w", err)
	}

	values := make(map[string]string)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("failed to parse secrets file: %w", err)
	}

	p.mu.Lock()
	p.values = values
	p.mu.Unlock()

	p.logger.Debug("secrets file loaded", "path", p.Path, "count", len(values))
	return nil
}

func (p *FileProvider) watchLoop() {
	for {
		select {
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(p.Path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			p.logger.Debug("secrets file changed, reloading", "op", event.Op.String())
			if err := p.load(); err != nil {
				// Keep serving the previous values on a bad reload
				p.logger.Error("failed to reload secrets file", "error", err)
			}

		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("secrets file watcher error", "error", err)

		case <-p.stopCh:
			return
		}
	}
}
