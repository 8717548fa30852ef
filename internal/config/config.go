package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	shellquote "github.com/kballard/go-shellquote"
	"gopkg.in/yaml.v2"

	"github.com/ruche-hive/ruche/internal/errors"
	"github.com/ruche-hive/ruche/internal/port"
	"github.com/ruche-hive/ruche/internal/storage"
)

const (
	DefaultConfigPath     = "config.toml"
	DefaultRegistryPath   = "ruche.db"
	DefaultListen         = ":3000"
	DefaultRequestTimeout = 15
	DefaultConsulPrefix   = "ruche/nodes/"
	DefaultParentCapacity = 4
)

// Environment overrides. A .env file in the working directory is loaded
// before they are read.
const (
	EnvJWTSecret = "RUCHE_JWT_SECRET"
	EnvMySQLDSN  = "RUCHE_MYSQL_DSN"
	EnvConsul    = "CONSUL_HTTP_ADDR"
)

// Registry backends
const (
	BackendSQLite = "sqlite"
	BackendMySQL  = "mysql"
	BackendConsul = "consul"
	BackendMemory = "memory"
)

// Config is the full ruche configuration, read from config.toml or a YAML
// equivalent.
type Config struct {
	Bee          BeeConfig          `toml:"bee" yaml:"bee"`
	Network      NetworkConfig      `toml:"network" yaml:"network"`
	Chains       ChainsConfig       `toml:"chains" yaml:"chains"`
	Storage      StorageConfig      `toml:"storage" yaml:"storage"`
	Registry     RegistryConfig     `toml:"registry" yaml:"registry"`
	Runtime      RuntimeConfig      `toml:"runtime" yaml:"runtime"`
	API          APIConfig          `toml:"api" yaml:"api"`
	Neighborhood NeighborhoodConfig `toml:"neighborhood" yaml:"neighborhood"`
	Audit        AuditConfig        `toml:"audit" yaml:"audit"`
	Monitor      MonitorConfig      `toml:"monitor" yaml:"monitor"`
	Log          LogConfig          `toml:"log" yaml:"log"`
}

// BeeConfig holds the settings every node container is created with.
type BeeConfig struct {
	Image           string `toml:"image" yaml:"image"`
	PasswordPath    string `toml:"password_path" yaml:"password_path"`
	WelcomeMsg      string `toml:"welcome_msg" yaml:"welcome_msg"`
	FullNode        bool   `toml:"full_node" yaml:"full_node"`
	SwapEnable      bool   `toml:"swap_enable" yaml:"swap_enable"`
	ReserveDoubling bool   `toml:"reserve_doubling" yaml:"reserve_doubling"`

	// Password is read from PasswordPath at load time.
	Password string `toml:"-" yaml:"-"`
}

type NetworkConfig struct {
	NATAddr       string `toml:"nat_addr" yaml:"nat_addr"`
	APIPort       string `toml:"api_port" yaml:"api_port"`
	P2PPort       string `toml:"p2p_port" yaml:"p2p_port"`
	UseDockerHost bool   `toml:"use_docker_host" yaml:"use_docker_host"`
}

type ChainsConfig struct {
	EthRPC string `toml:"eth_rpc" yaml:"eth_rpc"`
	GnoRPC string `toml:"gno_rpc" yaml:"gno_rpc"`
}

// StorageConfig describes the node directory layout:
// <root_path>/<parent_dir_format>/node_XX.
type StorageConfig struct {
	RootPath          string `toml:"root_path" yaml:"root_path"`
	ParentDirFormat   string `toml:"parent_dir_format" yaml:"parent_dir_format"`
	ParentDirCapacity int    `toml:"parent_dir_capacity" yaml:"parent_dir_capacity"`
}

type RegistryConfig struct {
	Backend      string `toml:"backend" yaml:"backend"`
	Path         string `toml:"path" yaml:"path"`
	DSN          string `toml:"dsn" yaml:"dsn"`
	ConsulAddr   string `toml:"consul_addr" yaml:"consul_addr"`
	ConsulPrefix string `toml:"consul_prefix" yaml:"consul_prefix"`
}

type RuntimeConfig struct {
	Type      string `toml:"type" yaml:"type"`
	ExtraArgs string `toml:"extra_args" yaml:"extra_args"`
	PullImage bool   `toml:"pull_image" yaml:"pull_image"`
	User      string `toml:"user" yaml:"user"`
}

type APIConfig struct {
	Listen             string `toml:"listen" yaml:"listen"`
	RequestTimeoutSecs int    `toml:"request_timeout_secs" yaml:"request_timeout_secs"`
	JWTSecret          string `toml:"jwt_secret" yaml:"jwt_secret"`
}

type NeighborhoodConfig struct {
	APIURL string `toml:"api_url" yaml:"api_url"`
}

type AuditConfig struct {
	Dir string `toml:"dir" yaml:"dir"`
}

// MonitorConfig controls the background health monitor run by the API
// server. A zero interval disables it.
type MonitorConfig struct {
	IntervalSecs int  `toml:"interval_secs" yaml:"interval_secs"`
	AutoRecreate bool `toml:"auto_recreate" yaml:"auto_recreate"`
}

type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
	JSON  bool   `toml:"json" yaml:"json"`
}

// Load reads the configuration at path, applies defaults and environment
// overrides, validates it and reads the node password file.
func Load(path string) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, errors.ConfigError("failed to load .env", err)
	}

	cfg, err := Parse(path)
	if err != nil {
		return nil, err
	}

	cfg.ApplyDefaults()
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, errors.ConfigError(fmt.Sprintf("invalid config %s", path), err)
	}

	if err := cfg.loadPassword(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parse decodes a config file without defaults or validation. Files ending
// in .yaml or .yml are read as YAML, anything else as TOML.
func Parse(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.ConfigError(fmt.Sprintf("failed to read config %s", path), err)
	}
	cfg, err := Decode(data, filepath.Ext(path))
	if err != nil {
		return nil, errors.ConfigError(fmt.Sprintf("failed to parse config %s", path), err)
	}
	return cfg, nil
}

// Decode decodes config data in the format named by ext (".toml", ".yaml"
// or ".yml"). Unknown keys are an error in both formats.
func Decode(data []byte, ext string) (*Config, error) {
	var cfg Config
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
			return nil, err
		}
	default:
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown keys: %v", undecoded)
		}
	}
	return &cfg, nil
}

func loadDotEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		return godotenv.Load(".env")
	}
	return nil
}

// ApplyDefaults fills unset optional fields.
func (c *Config) ApplyDefaults() {
	if c.Storage.ParentDirCapacity == 0 {
		c.Storage.ParentDirCapacity = DefaultParentCapacity
	}
	if c.Registry.Backend == "" {
		c.Registry.Backend = BackendSQLite
	}
	if c.Registry.Path == "" {
		c.Registry.Path = DefaultRegistryPath
	}
	if c.Registry.ConsulPrefix == "" {
		c.Registry.ConsulPrefix = DefaultConsulPrefix
	}
	if c.Runtime.Type == "" {
		c.Runtime.Type = "auto"
	}
	if c.API.Listen == "" {
		c.API.Listen = DefaultListen
	}
	if c.API.RequestTimeoutSecs == 0 {
		c.API.RequestTimeoutSecs = DefaultRequestTimeout
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvJWTSecret); v != "" {
		c.API.JWTSecret = v
	}
	if v := os.Getenv(EnvMySQLDSN); v != "" && c.Registry.DSN == "" {
		c.Registry.DSN = v
	}
	if v := os.Getenv(EnvConsul); v != "" && c.Registry.ConsulAddr == "" {
		c.Registry.ConsulAddr = v
	}
}

func (c *Config) loadPassword() error {
	data, err := os.ReadFile(c.Bee.PasswordPath)
	if err != nil {
		return errors.ConfigError(fmt.Sprintf("failed to read password file %s", c.Bee.PasswordPath), err)
	}
	c.Bee.Password = strings.TrimRight(string(data), "\r\n")
	return nil
}

// Validate checks that the Config is valid. Templates are checked here and
// again each time they are resolved.
func (c *Config) Validate() error {
	if c.Bee.Image == "" {
		return fmt.Errorf("bee.image is required")
	}
	if c.Bee.PasswordPath == "" {
		return fmt.Errorf("bee.password_path is required")
	}
	if err := c.Network.Validate(); err != nil {
		return fmt.Errorf("network: %w", err)
	}
	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Registry.Validate(); err != nil {
		return fmt.Errorf("registry: %w", err)
	}
	if err := c.Runtime.Validate(); err != nil {
		return fmt.Errorf("runtime: %w", err)
	}
	if c.API.RequestTimeoutSecs < 0 {
		return fmt.Errorf("api.request_timeout_secs must not be negative")
	}
	if c.Monitor.IntervalSecs < 0 {
		return fmt.Errorf("monitor.interval_secs must not be negative")
	}
	return nil
}

// Validate checks the port templates.
func (n *NetworkConfig) Validate() error {
	if n.NATAddr == "" {
		return fmt.Errorf("nat_addr is required")
	}
	if err := port.ValidateRange(n.APIPort); err != nil {
		return fmt.Errorf("api_port: %w", err)
	}
	if err := port.ValidateRange(n.P2PPort); err != nil {
		return fmt.Errorf("p2p_port: %w", err)
	}
	if n.APIPort == n.P2PPort {
		return fmt.Errorf("api_port and p2p_port must differ")
	}
	return nil
}

// Validate checks the directory template and capacity.
func (s *StorageConfig) Validate() error {
	if s.RootPath == "" {
		return fmt.Errorf("root_path is required")
	}
	if !filepath.IsAbs(s.RootPath) {
		return fmt.Errorf("root_path must be absolute: %s", s.RootPath)
	}
	if err := storage.ValidateTemplate(s.ParentDirFormat); err != nil {
		return fmt.Errorf("parent_dir_format: %w", err)
	}
	if s.ParentDirCapacity < 1 {
		return fmt.Errorf("parent_dir_capacity must be at least 1")
	}
	return nil
}

// Validate checks the backend name and its required settings.
func (r *RegistryConfig) Validate() error {
	switch r.Backend {
	case BackendSQLite, BackendMemory:
	case BackendMySQL:
		if r.DSN == "" {
			return fmt.Errorf("dsn is required for the mysql backend (or set %s)", EnvMySQLDSN)
		}
	case BackendConsul:
		if !strings.HasSuffix(r.ConsulPrefix, "/") {
			return fmt.Errorf("consul_prefix must end with '/'")
		}
	default:
		return fmt.Errorf("unknown backend %q (must be sqlite, mysql, consul, or memory)", r.Backend)
	}
	return nil
}

// Validate checks the runtime type and that extra_args parses.
func (r *RuntimeConfig) Validate() error {
	switch r.Type {
	case "auto", "docker", "podman":
	default:
		return fmt.Errorf("invalid type: %s (must be auto, docker, or podman)", r.Type)
	}
	if _, err := r.SplitExtraArgs(); err != nil {
		return fmt.Errorf("extra_args: %w", err)
	}
	return nil
}

// SplitExtraArgs splits extra_args using shell quoting rules.
func (r *RuntimeConfig) SplitExtraArgs() ([]string, error) {
	if strings.TrimSpace(r.ExtraArgs) == "" {
		return nil, nil
	}
	return shellquote.Split(r.ExtraArgs)
}

// Layout returns the node directory layout.
func (c *Config) Layout() storage.Layout {
	return storage.Layout{
		Root:        c.Storage.RootPath,
		Template:    c.Storage.ParentDirFormat,
		PerDirLimit: c.Storage.ParentDirCapacity,
	}
}

// MonitorInterval returns the health monitor period; zero means disabled.
func (c *Config) MonitorInterval() time.Duration {
	return time.Duration(c.Monitor.IntervalSecs) * time.Second
}

// RequestTimeout returns the per-request deadline used by the API.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.API.RequestTimeoutSecs) * time.Second
}
