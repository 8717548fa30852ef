package runtime

import (
	"fmt"
	"os/exec"

	"github.com/ruche-hive/ruche/internal/logging"
	"github.com/ruche-hive/ruche/internal/system"
)

// RuntimeType identifies which container runtime to use
type RuntimeType string

const (
	RuntimeDocker RuntimeType = "docker"
	RuntimePodman RuntimeType = "podman"
	RuntimeAuto   RuntimeType = "auto"
)

// Config holds runtime configuration
type Config struct {
	// Type specifies which runtime to use (or "auto" for auto-detection)
	Type RuntimeType

	// Executor runs the CLI; nil means the system default
	Executor system.CommandExecutor
}

// lookPath is replaced in tests.
var lookPath = exec.LookPath

// Detect determines which container runtime is available on the system.
// Docker is preferred since bee images are published for it.
func Detect() (RuntimeType, error) {
	if _, err := lookPath("docker"); err == nil {
		logging.Debug("detected docker")
		return RuntimeDocker, nil
	}

	if _, err := lookPath("podman"); err == nil {
		logging.Debug("detected podman")
		return RuntimePodman, nil
	}

	return "", fmt.Errorf("no supported container runtime found (tried: docker, podman)")
}

// New creates a new Runtime based on the configuration.
// If Type is RuntimeAuto or empty, it auto-detects the runtime.
func New(cfg Config) (Runtime, error) {
	runtimeType := cfg.Type
	if runtimeType == RuntimeAuto || runtimeType == "" {
		detected, err := Detect()
		if err != nil {
			return nil, err
		}
		runtimeType = detected
	}

	logging.Debug("creating runtime", "type", runtimeType)

	switch runtimeType {
	case RuntimeDocker, RuntimePodman:
		rt := NewDockerRuntime(string(runtimeType))
		if cfg.Executor != nil {
			rt.Exec = cfg.Executor
		}
		return rt, nil
	default:
		return nil, fmt.Errorf("unknown runtime type: %s", runtimeType)
	}
}
