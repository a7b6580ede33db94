package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"admin-console-go/internal/constants"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// startWatcher reloads the file when it changes. The directory is watched
// too, because save and most editors replace the file by rename.
func (cm *ConfigManager) startWatcher() {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.WithError(err).Debug("fsnotify unavailable, polling config file")
		go cm.pollLoop()
		return
	}
	if err := watcher.Add(filepath.Dir(cm.configPath)); err != nil {
		log.WithError(err).WithField("path", cm.configPath).Debug("cannot watch config directory, polling")
		_ = watcher.Close()
		go cm.pollLoop()
		return
	}
	go cm.watchLoop(watcher)
}

func (cm *ConfigManager) watchLoop(watcher *fsnotify.Watcher) {
	defer watcher.Close()

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case evt, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(evt.Name) != filepath.Clean(cm.configPath) {
				continue
			}
			if !evt.Has(fsnotify.Write) && !evt.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(constants.ConfigReloadDebounce, cm.checkAndReload)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.WithError(err).Warn("config watcher error")
		case <-cm.stopCh:
			return
		}
	}
}

func (cm *ConfigManager) pollLoop() {
	ticker := time.NewTicker(constants.ConfigPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			cm.checkAndReload()
		case <-cm.stopCh:
			return
		}
	}
}

// checkAndReload reloads when the file is newer than the last load or save.
func (cm *ConfigManager) checkAndReload() {
	info, err := os.Stat(cm.configPath)
	if err != nil {
		return
	}
	cm.mu.RLock()
	stale := info.ModTime().After(cm.lastMod)
	cm.mu.RUnlock()
	if !stale {
		return
	}

	prev := cm.GetConfig()
	cm.mu.Lock()
	err = cm.load()
	if err == nil {
		cm.mergeEnvVars()
	}
	cm.mu.Unlock()
	if err != nil {
		log.WithError(err).WithField("path", cm.configPath).Warn("config reload failed, keeping previous values")
		return
	}
	next := cm.GetConfig()

	for _, d := range diffFileConfig(prev, next) {
		log.WithFields(log.Fields{"field": d.field, "old": d.old, "new": d.new}).Info("config changed")
	}
	cm.emitChange(prev, next)
}

type fieldChange struct {
	field    string
	old, new string
}

// diffFileConfig reports the settings worth a log line. Secrets are left out.
func diffFileConfig(prev, next *FileConfig) []fieldChange {
	pairs := []struct {
		field    string
		old, new any
	}{
		{"api_base_url", prev.APIBaseURL, next.APIBaseURL},
		{"refresh_ahead_seconds", prev.RefreshAheadSeconds, next.RefreshAheadSeconds},
		{"rate_limit_rps", prev.RateLimitRPS, next.RateLimitRPS},
		{"storage_backend", prev.StorageBackend, next.StorageBackend},
		{"debug", prev.Debug, next.Debug},
		{"log_level", prev.LogLevel, next.LogLevel},
	}
	var out []fieldChange
	for _, p := range pairs {
		o, n := fmt.Sprint(p.old), fmt.Sprint(p.new)
		if o != n {
			out = append(out, fieldChange{field: p.field, old: o, new: n})
		}
	}
	return out
}
