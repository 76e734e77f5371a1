// Package config loads the judge service's YAML configuration:
// server address, worker pool sizing, sandbox engine settings and the
// logger, mirroring the layered defaults-then-override pattern this
// codebase's other services use.
package config

import (
	"fmt"
	"os"

	"codejudge/internal/sandbox/engine"
	"codejudge/pkg/logger"

	"gopkg.in/yaml.v3"
)

// ServerConfig controls the HTTP façade.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// ReadTimeoutMs/WriteTimeoutMs/IdleTimeoutMs feed directly into
	// the net/http.Server built around the gin router.
	ReadTimeoutMs  int64 `yaml:"readTimeoutMs"`
	WriteTimeoutMs int64 `yaml:"writeTimeoutMs"`
	IdleTimeoutMs  int64 `yaml:"idleTimeoutMs"`
}

// WorkerConfig sizes one worker pool.
type WorkerConfig struct {
	PoolSize int `yaml:"poolSize"`
}

// SandboxConfig mirrors engine.Config in YAML-friendly form.
type SandboxConfig struct {
	CgroupRoot           string `yaml:"cgroupRoot"`
	SeccompDir           string `yaml:"seccompDir"`
	HelperPath           string `yaml:"helperPath"`
	StdoutStderrMaxBytes int64  `yaml:"stdoutStderrMaxBytes"`
	EnableSeccomp        bool   `yaml:"enableSeccomp"`
	EnableCgroup         bool   `yaml:"enableCgroup"`
	EnableNamespaces     bool   `yaml:"enableNamespaces"`
	GraceMs              int64  `yaml:"graceMs"`
}

// ToEngineConfig converts the YAML shape into engine.Config.
func (s SandboxConfig) ToEngineConfig() engine.Config {
	return engine.Config{
		CgroupRoot:           s.CgroupRoot,
		SeccompDir:           s.SeccompDir,
		HelperPath:           s.HelperPath,
		StdoutStderrMaxBytes: s.StdoutStderrMaxBytes,
		EnableSeccomp:        s.EnableSeccomp,
		EnableCgroup:         s.EnableCgroup,
		EnableNamespaces:     s.EnableNamespaces,
		GraceMs:              s.GraceMs,
	}
}

// ProfileConfig maps a driver's submission type to its isolation
// profile name and optional rootfs/seccomp overrides.
type ProfileConfig struct {
	RootFS         string `yaml:"rootfs"`
	SeccompProfile string `yaml:"seccompProfile"`
	DisableNetwork bool   `yaml:"disableNetwork"`
}

// AppConfig is the root of the judge service's YAML configuration.
type AppConfig struct {
	Server       ServerConfig             `yaml:"server"`
	ShortWorkers WorkerConfig             `yaml:"shortWorkers"`
	LongWorkers  WorkerConfig             `yaml:"longWorkers"`
	Sandbox      SandboxConfig            `yaml:"sandbox"`
	Profiles     map[string]ProfileConfig `yaml:"profiles"`
	ScratchRoot  string                   `yaml:"scratchRoot"`
	BootstrapCfg string                   `yaml:"bootstrapConfig"`
	StateFile    string                   `yaml:"stateFile"`
	Logger       logger.Config            `yaml:"logger"`
}

// Load reads and applies defaults to the YAML config at path.
func Load(path string) (AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AppConfig{}, fmt.Errorf("read config: %w", err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse config: %w", err)
	}
	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = "0.0.0.0:8085"
	}
	if cfg.Server.ReadTimeoutMs <= 0 {
		cfg.Server.ReadTimeoutMs = 5000
	}
	if cfg.Server.WriteTimeoutMs <= 0 {
		// Long-batch Lean submissions can legitimately run for minutes;
		// the write timeout has to cover the slowest batch endpoint.
		cfg.Server.WriteTimeoutMs = 180000
	}
	if cfg.Server.IdleTimeoutMs <= 0 {
		cfg.Server.IdleTimeoutMs = 120000
	}
	if cfg.ShortWorkers.PoolSize <= 0 {
		cfg.ShortWorkers.PoolSize = 4
	}
	if cfg.LongWorkers.PoolSize <= 0 {
		cfg.LongWorkers.PoolSize = 2
	}
	if cfg.Sandbox.HelperPath == "" {
		cfg.Sandbox.HelperPath = "sandbox-init"
	}
	if cfg.Sandbox.StdoutStderrMaxBytes <= 0 {
		cfg.Sandbox.StdoutStderrMaxBytes = 64 * 1024
	}
	if cfg.Sandbox.GraceMs <= 0 {
		cfg.Sandbox.GraceMs = 1000
	}
	if cfg.ScratchRoot == "" {
		cfg.ScratchRoot = "/tmp/codejudge/scratch"
	}
	if cfg.BootstrapCfg == "" {
		cfg.BootstrapCfg = "configs/tools.yaml"
	}
	if cfg.StateFile == "" {
		cfg.StateFile = ".state/state.json"
	}
	if cfg.Logger.Service == "" {
		cfg.Logger.Service = "codejudge"
	}
}
