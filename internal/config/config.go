package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for shelf.
type Config struct {
	DataDir    string           `toml:"data_dir"`
	LogDir     string           `toml:"log_dir"`
	LogLevel   string           `toml:"log_level"` // debug, info, warn or error
	Language   string           `toml:"language"`  // initial UI language, "cn" or "en"
	Store      StoreConfig      `toml:"store"`
	Encryption EncryptionConfig `toml:"encryption"`
	Server     ServerConfig     `toml:"server"`
}

// StoreConfig selects the key-value backend that holds bookmarks and settings.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type StoreConfig struct {
	Type string `toml:"type"` // "memory", "filesystem", "sqlite", "redis" or "s3"

	// Filesystem-specific fields (only used when Type == "filesystem")
	FSRoot string `toml:"fs_root,omitempty"`

	// SQLite-specific fields (only used when Type == "sqlite")
	SQLitePath string `toml:"sqlite_path,omitempty"`

	// Redis-specific fields (only used when Type == "redis")
	RedisAddr     string `toml:"redis_addr,omitempty"`
	RedisPassword string `toml:"redis_password,omitempty"`
	RedisDB       int    `toml:"redis_db,omitempty"`
	RedisPrefix   string `toml:"redis_prefix,omitempty"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket    string `toml:"s3_bucket,omitempty"`
	S3Prefix    string `toml:"s3_prefix,omitempty"`
	S3Region    string `toml:"s3_region,omitempty"`
	S3Endpoint  string `toml:"s3_endpoint,omitempty"`
	S3AccessKey string `toml:"s3_access_key,omitempty"`
	S3SecretKey string `toml:"s3_secret_key,omitempty"`

	// Timeout bounds a single network operation for redis and s3, e.g. "5s".
	Timeout Duration `toml:"timeout,omitempty"`
}

// EncryptionConfig holds paths to the age key pair used for encrypted backups.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "age" (default) or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
	Armor          bool   `toml:"armor"` // write ASCII-armored backups
}

// ServerConfig configures `shelf serve`.
type ServerConfig struct {
	Listen string `toml:"listen"`
}

// Duration is a time.Duration written as a string such as "5s" in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// NewConfig creates a new Config rooted at baseDir: a filesystem store under
// <base>/data, logs under <base>/log and keys under <base>/keys.
func NewConfig(baseDir string) *Config {
	dataDir := filepath.Join(baseDir, "data")
	return &Config{
		DataDir:  dataDir,
		LogDir:   filepath.Join(baseDir, "log"),
		LogLevel: "info",
		Language: "cn",
		Store: StoreConfig{
			Type:   "filesystem",
			FSRoot: dataDir,
		},
		Encryption: EncryptionConfig{
			Type:           "age",
			PublicKeyPath:  filepath.Join(baseDir, "keys", "shelf.pub"),
			PrivateKeyPath: filepath.Join(baseDir, "keys", "shelf.key"),
		},
		Server: ServerConfig{
			Listen: "127.0.0.1:8787",
		},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Init writes cfg to a new config file at path. It refuses to overwrite an
// existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("initializing config at %s: %w", path, err)
	}
	return nil
}
