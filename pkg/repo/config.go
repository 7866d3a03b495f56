package repo

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/google/renameio"
)

// ConfigFile is the name of the repository config inside .git/.
const ConfigFile = "gitplumb.toml"

const (
	defaultAuthorName  = "Your Name"
	defaultAuthorEmail = "your.email@example.com"
)

// Config stores repository-local settings.
type Config struct {
	User    UserConfig        `toml:"user"`
	Remotes map[string]string `toml:"remotes,omitempty"`
}

// UserConfig holds the commit identity.
type UserConfig struct {
	Name  string `toml:"name,omitempty"`
	Email string `toml:"email,omitempty"`
}

// Identity is the name and email stamped into commits.
type Identity struct {
	Name  string
	Email string
}

func (r *Repo) configPath() string {
	return filepath.Join(r.GitDir, ConfigFile)
}

// ReadConfig reads .git/gitplumb.toml. Missing config returns an empty config.
func (r *Repo) ReadConfig() (*Config, error) {
	cfg := &Config{Remotes: make(map[string]string)}
	data, err := os.ReadFile(r.configPath())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("read config: decode: %w", err)
	}
	if cfg.Remotes == nil {
		cfg.Remotes = make(map[string]string)
	}
	return cfg, nil
}

// WriteConfig atomically writes .git/gitplumb.toml.
func (r *Repo) WriteConfig(cfg *Config) error {
	if cfg == nil {
		cfg = &Config{}
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}
	if err := renameio.WriteFile(r.configPath(), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// SetRemote stores/updates a named remote URL in repository config.
func (r *Repo) SetRemote(name, remoteURL string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("set remote: remote name is required")
	}
	remoteURL = strings.TrimSpace(remoteURL)
	if remoteURL == "" {
		return fmt.Errorf("set remote: remote URL is required")
	}

	cfg, err := r.ReadConfig()
	if err != nil {
		return err
	}
	cfg.Remotes[name] = remoteURL
	return r.WriteConfig(cfg)
}

// RemoteURL returns the configured URL for a named remote.
func (r *Repo) RemoteURL(name string) (string, error) {
	cfg, err := r.ReadConfig()
	if err != nil {
		return "", err
	}
	u, ok := cfg.Remotes[name]
	if !ok {
		return "", fmt.Errorf("remote %q not configured", name)
	}
	return u, nil
}

// SetIdentity records the commit identity in repository config.
func (r *Repo) SetIdentity(id Identity) error {
	cfg, err := r.ReadConfig()
	if err != nil {
		return err
	}
	cfg.User = UserConfig{Name: strings.TrimSpace(id.Name), Email: strings.TrimSpace(id.Email)}
	return r.WriteConfig(cfg)
}

// ResolveIdentity picks the commit identity. GIT_AUTHOR_NAME and
// GIT_AUTHOR_EMAIL win over config, which wins over the built-in default.
func (r *Repo) ResolveIdentity() (Identity, error) {
	cfg, err := r.ReadConfig()
	if err != nil {
		return Identity{}, err
	}
	return resolveIdentity(cfg, os.Getenv), nil
}

func resolveIdentity(cfg *Config, getenv func(string) string) Identity {
	id := Identity{Name: defaultAuthorName, Email: defaultAuthorEmail}
	if cfg != nil {
		if v := strings.TrimSpace(cfg.User.Name); v != "" {
			id.Name = v
		}
		if v := strings.TrimSpace(cfg.User.Email); v != "" {
			id.Email = v
		}
	}
	if v := strings.TrimSpace(getenv("GIT_AUTHOR_NAME")); v != "" {
		id.Name = v
	}
	if v := strings.TrimSpace(getenv("GIT_AUTHOR_EMAIL")); v != "" {
		id.Email = v
	}
	return id
}
