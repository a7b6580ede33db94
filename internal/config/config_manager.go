package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"admin-console-go/internal/events"

	log "github.com/sirupsen/logrus"
)

// ConfigManager owns the on-disk configuration: it loads it, overlays the
// environment, persists edits and reloads the file when it changes.
type ConfigManager struct {
	mu         sync.RWMutex
	config     *FileConfig
	configPath string
	lastMod    time.Time
	onChange   []func(*FileConfig)
	publisher  events.Publisher

	stopCh    chan struct{}
	closeOnce sync.Once
}

// ConfigChangeEvent is the payload broadcast when configuration changes.
type ConfigChangeEvent struct {
	Path      string      `json:"path"`
	UpdatedAt time.Time   `json:"updated_at"`
	Config    FileConfig  `json:"config"`
	Previous  *FileConfig `json:"previous,omitempty"`
}

// searchLocations lists where a config file is looked for when no path is
// given, most specific first.
func searchLocations() []string {
	locs := []string{"admin-console.yaml", "admin-console.yml", "admin-console.json"}
	if dir, err := os.UserConfigDir(); err == nil {
		locs = append(locs,
			filepath.Join(dir, "admin-console", "config.yaml"),
			filepath.Join(dir, "admin-console", "config.json"),
		)
	}
	if home, err := os.UserHomeDir(); err == nil {
		locs = append(locs, filepath.Join(home, ".admin-console", "config.yaml"))
	}
	return append(locs, "/etc/admin-console/config.yaml")
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// NewConfigManager loads configPath, or the first file found in the search
// locations when it is empty. A missing file is not an error: defaults are
// used and a later UpdateConfig creates the file.
func NewConfigManager(configPath string) (*ConfigManager, error) {
	if configPath == "" {
		for _, loc := range searchLocations() {
			if _, err := os.Stat(loc); err == nil {
				configPath = loc
				break
			}
		}
	}
	configPath, err := expandHome(configPath)
	if err != nil {
		return nil, err
	}

	cm := &ConfigManager{
		configPath: configPath,
		stopCh:     make(chan struct{}),
	}
	switch err := cm.load(); {
	case err == nil:
	case errors.Is(err, os.ErrNotExist):
		cm.config = cm.defaultConfig()
		log.WithField("path", configPath).Debug("no config file found, using defaults")
	default:
		return nil, fmt.Errorf("load config: %w", err)
	}
	cm.mergeEnvVars()

	if cm.configPath != "" {
		if _, err := os.Stat(cm.configPath); err == nil {
			cm.startWatcher()
		}
	}
	return cm, nil
}

// OnChange registers a callback run after every reload or update.
func (cm *ConfigManager) OnChange(fn func(*FileConfig)) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.onChange = append(cm.onChange, fn)
}

// SetEventPublisher wires the hub that receives TopicConfigUpdated.
func (cm *ConfigManager) SetEventPublisher(p events.Publisher) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	cm.publisher = p
}

// GetConfig returns a copy of the current file configuration.
func (cm *ConfigManager) GetConfig() *FileConfig {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if cm.config == nil {
		return cm.defaultConfig()
	}
	fc := *cm.config
	return &fc
}

// UpdateConfig applies mutate and writes the result back to the file, when
// there is one.
func (cm *ConfigManager) UpdateConfig(mutate func(*FileConfig)) error {
	cm.mu.Lock()
	if cm.config == nil {
		cm.config = cm.defaultConfig()
	}
	prev := *cm.config
	mutate(cm.config)
	next := *cm.config

	var err error
	if cm.configPath != "" {
		if err = cm.save(); err != nil {
			*cm.config = prev
		}
	}
	cm.mu.Unlock()
	if err != nil {
		return err
	}

	cm.emitChange(&prev, &next)
	return nil
}

// Path returns the config file in use, or "" when running on defaults.
func (cm *ConfigManager) Path() string {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return cm.configPath
}

// Close stops the file watcher.
func (cm *ConfigManager) Close() {
	cm.closeOnce.Do(func() { close(cm.stopCh) })
}

func (cm *ConfigManager) emitChange(prev, next *FileConfig) {
	cm.mu.RLock()
	callbacks := slices.Clone(cm.onChange)
	publisher, path := cm.publisher, cm.configPath
	cm.mu.RUnlock()

	for _, fn := range callbacks {
		fn(next)
	}
	if publisher == nil || next == nil {
		return
	}
	evt := ConfigChangeEvent{Path: path, UpdatedAt: time.Now().UTC(), Config: *next}
	if prev != nil {
		p := *prev
		evt.Previous = &p
	}
	publisher.Publish(context.Background(), events.TopicConfigUpdated, evt, nil)
}
