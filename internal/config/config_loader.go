package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// fileFormat picks the codec from the extension. Unknown extensions are
// read as YAML first, then JSON, and written as YAML.
type fileFormat int

const (
	formatAuto fileFormat = iota
	formatYAML
	formatJSON
)

func formatOf(path string) fileFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	case ".json":
		return formatJSON
	default:
		return formatAuto
	}
}

func decodeFileConfig(path string, data []byte) (*FileConfig, error) {
	var fc FileConfig
	switch formatOf(path) {
	case formatJSON:
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse JSON config %s: %w", path, err)
		}
	case formatYAML:
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return nil, fmt.Errorf("parse YAML config %s: %w", path, err)
		}
	default:
		yamlErr := yaml.Unmarshal(data, &fc)
		if yamlErr == nil {
			break
		}
		fc = FileConfig{}
		if jsonErr := json.Unmarshal(data, &fc); jsonErr != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, errors.Join(yamlErr, jsonErr))
		}
	}
	return &fc, nil
}

func encodeFileConfig(path string, fc *FileConfig) ([]byte, error) {
	if formatOf(path) == formatJSON {
		return json.MarshalIndent(fc, "", "  ")
	}
	return yaml.Marshal(fc)
}

// load reads the file into cm.config. Callers hold cm.mu when the manager
// is shared.
func (cm *ConfigManager) load() error {
	if cm.configPath == "" {
		return os.ErrNotExist
	}
	data, err := os.ReadFile(cm.configPath)
	if err != nil {
		return err
	}
	fc, err := decodeFileConfig(cm.configPath, data)
	if err != nil {
		return err
	}
	if info, err := os.Stat(cm.configPath); err == nil {
		cm.lastMod = info.ModTime()
	}
	cm.config = fc
	log.WithField("path", cm.configPath).Debug("configuration loaded")
	return nil
}

// save writes cm.config through a temp file and rename, so a watcher never
// sees a half-written file. The file may hold a redis password, hence 0600.
func (cm *ConfigManager) save() error {
	if cm.configPath == "" {
		return errors.New("no config file path set")
	}
	data, err := encodeFileConfig(cm.configPath, cm.config)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	dir := filepath.Dir(cm.configPath)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp config: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp config: %w", err)
	}
	if err := os.Rename(tmpName, cm.configPath); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}

	if info, err := os.Stat(cm.configPath); err == nil {
		cm.lastMod = info.ModTime()
	}
	log.WithField("path", cm.configPath).Info("configuration saved")
	return nil
}
