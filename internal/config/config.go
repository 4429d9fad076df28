package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel string        `json:"log_level" yaml:"log_level"`
	API      APIConfig     `json:"api" yaml:"api"`
	Ranker   RankerConfig  `json:"ranker" yaml:"ranker"`
	Tiers    TiersConfig   `json:"tiers" yaml:"tiers"`
	Storage  StorageConfig `json:"storage" yaml:"storage"`
	Publish  PublishConfig `json:"publish" yaml:"publish"`
	History  HistoryConfig `json:"history" yaml:"history"`
}

type APIConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Addr      string `json:"addr" yaml:"addr"`
	AllowCORS bool   `json:"allow_cors" yaml:"allow_cors"`
}

type RankerConfig struct {
	URL       string        `json:"url" yaml:"url"`
	Timeout   time.Duration `json:"timeout" yaml:"timeout"`
	UseFreq   bool          `json:"use_freq" yaml:"use_freq"`
	CacheSize int           `json:"cache_size" yaml:"cache_size"`
}

// TiersConfig buckets roster entries by cost per engagement. PremiumMin
// and ModerateMin are the tier boundaries; CheapMax is the layered-defense
// eligibility ceiling.
type TiersConfig struct {
	PremiumMin  int `json:"premium_min" yaml:"premium_min"`
	ModerateMin int `json:"moderate_min" yaml:"moderate_min"`
	CheapMax    int `json:"cheap_max" yaml:"cheap_max"`
}

type StorageConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Driver  string `json:"driver" yaml:"driver"`
	DSN     string `json:"dsn" yaml:"dsn"`
}

type PublishConfig struct {
	Enabled bool     `json:"enabled" yaml:"enabled"`
	Brokers []string `json:"brokers" yaml:"brokers"`
	Topic   string   `json:"topic" yaml:"topic"`
}

type HistoryConfig struct {
	StoreLimit int `json:"store_limit" yaml:"store_limit"`
}

func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		API:      APIConfig{Enabled: true, Addr: ":8081", AllowCORS: true},
		Ranker: RankerConfig{
			URL:       "http://localhost:8000/v1/compare",
			Timeout:   30 * time.Second,
			UseFreq:   true,
			CacheSize: 128,
		},
		Tiers:   TiersConfig{PremiumMin: 400_000, ModerateMin: 30_000, CheapMax: 50_000},
		Storage: StorageConfig{Enabled: false, Driver: "sqlite", DSN: "file:skyshield.db?_pragma=busy_timeout(5000)"},
		Publish: PublishConfig{Enabled: false},
		History: HistoryConfig{StoreLimit: 500},
	}
}

func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()

	trimmed := strings.TrimSpace(string(content))
	if len(trimmed) == 0 {
		return nil, errors.New("config file is empty")
	}
	var decodeErr error
	if looksLikeJSON(trimmed) {
		decodeErr = json.Unmarshal([]byte(trimmed), cfg)
	} else {
		decodeErr = yaml.Unmarshal([]byte(trimmed), cfg)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	applyDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	if path == "" || cfg == nil {
		return errors.New("config path or config is empty")
	}
	var data []byte
	var err error
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func looksLikeJSON(s string) bool {
	for _, ch := range s {
		if ch == '{' || ch == '[' {
			return true
		}
		if ch > ' ' {
			return false
		}
	}
	return false
}

func applyDefaults(cfg *Config) {
	if cfg.Ranker.Timeout <= 0 {
		cfg.Ranker.Timeout = 30 * time.Second
	}
	if cfg.Ranker.CacheSize <= 0 {
		cfg.Ranker.CacheSize = 128
	}
	if cfg.Tiers.PremiumMin <= 0 {
		cfg.Tiers.PremiumMin = 400_000
	}
	if cfg.Tiers.ModerateMin <= 0 {
		cfg.Tiers.ModerateMin = 30_000
	}
	if cfg.Tiers.CheapMax <= 0 {
		cfg.Tiers.CheapMax = 50_000
	}
	if cfg.History.StoreLimit <= 0 {
		cfg.History.StoreLimit = 500
	}
}

func Validate(cfg *Config) error {
	if cfg.API.Enabled && cfg.API.Addr == "" {
		return errors.New("api.addr required when api.enabled is true")
	}
	if cfg.Ranker.URL == "" {
		return errors.New("ranker.url is required")
	}
	if cfg.Tiers.ModerateMin >= cfg.Tiers.PremiumMin {
		return fmt.Errorf("tiers.moderate_min (%d) must be below tiers.premium_min (%d)", cfg.Tiers.ModerateMin, cfg.Tiers.PremiumMin)
	}
	if cfg.Publish.Enabled {
		if len(cfg.Publish.Brokers) == 0 || cfg.Publish.Topic == "" {
			return errors.New("publish requires brokers and topic")
		}
	}
	if cfg.Storage.Enabled && cfg.Storage.Driver == "" {
		return errors.New("storage.driver required when storage.enabled is true")
	}
	return nil
}

type Manager struct {
	path    string
	cfg     atomic.Value
	modTime time.Time
}

func NewManager(path string) (*Manager, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	m := &Manager{path: path}
	m.cfg.Store(cfg)
	info, err := os.Stat(path)
	if err == nil {
		m.modTime = info.ModTime()
	}
	return m, nil
}

// NewStaticManager wraps an in-memory config with no backing file; Reload
// and Watch are no-ops for it.
func NewStaticManager(cfg *Config) *Manager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	m := &Manager{}
	m.cfg.Store(cfg)
	return m
}

func (m *Manager) Get() *Config {
	if v := m.cfg.Load(); v != nil {
		return v.(*Config)
	}
	return DefaultConfig()
}

func (m *Manager) Path() string {
	return m.path
}

func (m *Manager) Reload() (*Config, error) {
	if m.path == "" {
		return m.Get(), nil
	}
	cfg, err := Load(m.path)
	if err != nil {
		return nil, err
	}
	m.cfg.Store(cfg)
	if info, err := os.Stat(m.path); err == nil {
		m.modTime = info.ModTime()
	}
	return cfg, nil
}

func (m *Manager) NeedsReload() (bool, error) {
	if m.path == "" {
		return false, nil
	}
	info, err := os.Stat(m.path)
	if err != nil {
		return false, err
	}
	return info.ModTime().After(m.modTime), nil
}

func (m *Manager) Watch(interval time.Duration, onReload func(*Config), onError func(error), stop <-chan struct{}) {
	if m.path == "" {
		return
	}
	if interval <= 0 {
		interval = 3 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			needs, err := m.NeedsReload()
			if err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			if !needs {
				continue
			}
			cfg, err := m.Reload()
			if err != nil {
				if onError != nil {
					onError(err)
				}
				continue
			}
			if onReload != nil {
				onReload(cfg)
			}
		case <-stop:
			return
		}
	}
}

func ResolvePath(path string) string {
	if path == "" {
		return path
	}
	if filepath.IsAbs(path) {
		return path
	}
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	return filepath.Join(cwd, path)
}
