// Package runtime defines the container runtime interface ruche drives to
// run bee nodes, with a docker/podman CLI backend and a mock for tests.
package runtime

import (
	"context"
)

// ContainerStatus represents the state of a container
type ContainerStatus string

const (
	StatusRunning  ContainerStatus = "running"
	StatusStopped  ContainerStatus = "stopped"
	StatusNotFound ContainerStatus = "not-found"
	StatusUnknown  ContainerStatus = "unknown"
)

// RestartUnlessStopped restarts a container automatically unless an
// operator stopped it.
const RestartUnlessStopped = "unless-stopped"

// ContainerInfo holds information about a container
type ContainerInfo struct {
	Name      string
	Image     string
	Status    ContainerStatus
	StartedAt string
}

// Mount is a host directory bound into a container.
type Mount struct {
	HostPath      string
	ContainerPath string
	ReadOnly      bool
}

// PortBinding publishes ContainerPort on HostIP:HostPort.
type PortBinding struct {
	HostIP        string
	HostPort      string
	ContainerPort string
}

// CreateOptions holds options for creating a container
type CreateOptions struct {
	Name          string
	Image         string
	Cmd           []string
	User          string // uid:gid
	Env           []string
	Mounts        []Mount
	Ports         []PortBinding
	RestartPolicy string
	ExtraHosts    []string // host:ip entries
	ExtraArgs     []string // Backend-specific arguments
	Pull          bool     // Pull the image before creating
	Start         bool     // Start immediately after creation
}

// Runtime is the interface that container backends must implement.
// All methods should be safe for concurrent use.
type Runtime interface {
	// Name returns the runtime identifier (e.g., "docker", "podman")
	Name() string

	// Create creates a new container, starting it if opts.Start is set
	Create(ctx context.Context, opts CreateOptions) error

	// Start starts an existing container
	Start(ctx context.Context, name string) error

	// Stop stops a running container
	Stop(ctx context.Context, name string) error

	// Remove force-removes a container. A missing container is not an error.
	Remove(ctx context.Context, name string) error

	// Status returns detailed status of a container
	Status(ctx context.Context, name string) (*ContainerInfo, error)

	// Logs returns the container's combined stdout and stderr lines
	Logs(ctx context.Context, name string) ([]string, error)

	// List returns the containers whose name starts with prefix
	List(ctx context.Context, prefix string) ([]*ContainerInfo, error)
}
