package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:default} patterns in a string.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		submatch := envVarPattern.FindStringSubmatch(match)
		if len(submatch) < 2 {
			return match
		}
		varName := submatch[1]
		defaultVal := ""
		if len(submatch) >= 3 {
			defaultVal = submatch[2]
		}
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return defaultVal
	})
}

// LoadFile reads a YAML file, expands env vars, and unmarshals into dest.
func LoadFile(path string, dest any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	expanded := expandEnvVars(string(data))
	if err := yaml.Unmarshal([]byte(expanded), dest); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Loader manages configuration loading and hot-reload via fsnotify.
type Loader struct {
	configDir string
	mu        sync.RWMutex
	cfg       *Config
	providers *ProvidersConfig
	watchers  []func()
	failHooks []func(error)
	logger    *slog.Logger
}

func NewLoader(configDir string, logger *slog.Logger) *Loader {
	return &Loader{
		configDir: configDir,
		logger:    logger,
	}
}

func (l *Loader) Load() error {
	cfg := DefaultConfig()
	if err := LoadFile(l.configDir+"/gateway.yaml", cfg); err != nil {
		return fmt.Errorf("load gateway config: %w", err)
	}

	providers, err := LoadProviders(l.configDir + "/providers.yaml")
	if err != nil {
		return fmt.Errorf("load providers config: %w", err)
	}

	l.mu.Lock()
	l.cfg = cfg
	l.providers = providers
	l.mu.Unlock()

	l.logger.Info("configuration loaded", "dir", l.configDir, "providers", len(providers.Providers))
	return nil
}

// LoadProviders reads the providers file, filling unset fields of the known
// providers from DefaultProviders. A missing file yields the defaults.
func LoadProviders(path string) (*ProvidersConfig, error) {
	defaults := DefaultProviders()
	loaded := &ProvidersConfig{}
	if err := LoadFile(path, loaded); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		return defaults, nil
	}

	for name, p := range loaded.Providers {
		if def, ok := defaults.Providers[name]; ok {
			loaded.Providers[name] = mergeProvider(p, def)
		}
	}
	if err := loaded.Validate(); err != nil {
		return nil, err
	}
	return loaded, nil
}

func mergeProvider(p, def ProviderConfig) ProviderConfig {
	if p.Type == "" {
		p.Type = def.Type
	}
	if p.BaseURL == "" {
		p.BaseURL = def.BaseURL
	}
	if p.APIKeyEnv == "" {
		p.APIKeyEnv = def.APIKeyEnv
	}
	if p.DefaultModel == "" {
		p.DefaultModel = def.DefaultModel
	}
	if p.MaxConcurrent == 0 {
		p.MaxConcurrent = def.MaxConcurrent
	}
	return p
}

// Validate checks that every configured provider can be built.
func (pc *ProvidersConfig) Validate() error {
	for name, p := range pc.Providers {
		switch p.Type {
		case "openai", "gemini", "deepseek":
		default:
			return fmt.Errorf("provider %s: unsupported type %q", name, p.Type)
		}
		if strings.TrimSpace(p.BaseURL) == "" {
			return fmt.Errorf("provider %s: base_url must be set", name)
		}
		if p.DefaultModel == "" {
			return fmt.Errorf("provider %s: default_model must be set", name)
		}
	}
	return nil
}

func (l *Loader) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cfg
}

func (l *Loader) Providers() *ProvidersConfig {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.providers
}

// OnReload registers a callback that fires after config is reloaded.
func (l *Loader) OnReload(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.watchers = append(l.watchers, fn)
}

// OnReloadError registers a callback that fires when a reload is rejected.
// The previous configuration stays active.
func (l *Loader) OnReloadError(fn func(error)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failHooks = append(l.failHooks, fn)
}

// Watch starts watching the config directory for changes and reloads on modification.
func (l *Loader) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := watcher.Add(l.configDir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch config dir %s: %w", l.configDir, err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					l.logger.Info("config file changed, reloading", "file", event.Name)
					if err := l.Load(); err != nil {
						l.logger.Error("failed to reload config", "error", err)
						l.mu.RLock()
						hooks := append([]func(error){}, l.failHooks...)
						l.mu.RUnlock()
						for _, fn := range hooks {
							fn(err)
						}
						continue
					}
					l.mu.RLock()
					watchers := append([]func(){}, l.watchers...)
					l.mu.RUnlock()
					for _, fn := range watchers {
						fn()
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				l.logger.Error("fsnotify error", "error", err)
			}
		}
	}()

	return nil
}
