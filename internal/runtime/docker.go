package runtime

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ruche-hive/ruche/internal/logging"
	"github.com/ruche-hive/ruche/internal/system"
)

// DockerRuntime implements the Runtime interface by driving the docker or
// podman CLI.
type DockerRuntime struct {
	// Command is the container command to use (docker or podman)
	Command string

	// Exec runs the command; tests substitute a system.MockExecutor.
	Exec system.CommandExecutor
}

// NewDockerRuntime creates a runtime for command using the default executor.
func NewDockerRuntime(command string) *DockerRuntime {
	return &DockerRuntime{
		Command: command,
		Exec:    system.DefaultExecutor(),
	}
}

// Name returns the runtime identifier
func (r *DockerRuntime) Name() string {
	return r.Command
}

// runCmd executes a docker/podman command
func (r *DockerRuntime) runCmd(ctx context.Context, args ...string) (string, error) {
	out, err := r.Exec.Execute(ctx, r.Command, args...)
	if err != nil {
		return string(out), fmt.Errorf("%s %s failed: %s: %w", r.Command, args[0], strings.TrimSpace(string(out)), err)
	}
	return string(out), nil
}

// createArgs builds the argument list for "create".
func createArgs(opts CreateOptions) []string {
	args := []string{"create", "--name", opts.Name}

	if opts.RestartPolicy != "" {
		args = append(args, "--restart", opts.RestartPolicy)
	}
	if opts.User != "" {
		args = append(args, "--user", opts.User)
	}
	for _, m := range opts.Mounts {
		spec := m.HostPath + ":" + m.ContainerPath
		if m.ReadOnly {
			spec += ":ro"
		}
		args = append(args, "-v", spec)
	}
	for _, p := range opts.Ports {
		args = append(args, "-p", fmt.Sprintf("%s:%s:%s", p.HostIP, p.HostPort, p.ContainerPort))
	}
	for _, h := range opts.ExtraHosts {
		args = append(args, "--add-host", h)
	}
	for _, e := range opts.Env {
		args = append(args, "-e", e)
	}

	args = append(args, opts.ExtraArgs...)
	args = append(args, opts.Image)
	args = append(args, opts.Cmd...)
	return args
}

// Create creates a new container from opts.Image
func (r *DockerRuntime) Create(ctx context.Context, opts CreateOptions) error {
	logging.Debug("creating container", "name", opts.Name, "image", opts.Image, "runtime", r.Command)

	if opts.Pull {
		logging.Debug("pulling image", "image", opts.Image)
		if _, err := r.runCmd(ctx, "pull", opts.Image); err != nil {
			return err
		}
	}

	if _, err := r.runCmd(ctx, createArgs(opts)...); err != nil {
		return err
	}

	if opts.Start {
		return r.Start(ctx, opts.Name)
	}

	return nil
}

// Start starts an existing container
func (r *DockerRuntime) Start(ctx context.Context, name string) error {
	logging.Debug("starting container", "container", name)

	_, err := r.runCmd(ctx, "start", name)
	return err
}

// Stop stops a running container
func (r *DockerRuntime) Stop(ctx context.Context, name string) error {
	logging.Debug("stopping container", "container", name)

	_, err := r.runCmd(ctx, "stop", name)
	return err
}

// Remove force-removes a container
func (r *DockerRuntime) Remove(ctx context.Context, name string) error {
	logging.Debug("removing container", "container", name)

	_, err := r.runCmd(ctx, "rm", "-f", name)
	if err != nil && isNoSuchContainer(err) {
		return nil
	}
	return err
}

func isNoSuchContainer(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such container") || strings.Contains(msg, "no container with name")
}

// dockerInspect holds the relevant fields from docker inspect
type dockerInspect struct {
	Name   string `json:"Name"`
	Config struct {
		Image string `json:"Image"`
	} `json:"Config"`
	State struct {
		Status    string `json:"Status"`
		Running   bool   `json:"Running"`
		StartedAt string `json:"StartedAt"`
	} `json:"State"`
}

func statusFromState(state string) ContainerStatus {
	switch strings.ToLower(state) {
	case "running", "restarting":
		return StatusRunning
	case "exited", "stopped", "created", "configured", "paused", "dead":
		return StatusStopped
	default:
		return StatusUnknown
	}
}

// Status returns detailed status of a container
func (r *DockerRuntime) Status(ctx context.Context, name string) (*ContainerInfo, error) {
	info := &ContainerInfo{
		Name:   name,
		Status: StatusNotFound,
	}

	output, err := r.runCmd(ctx, "inspect", "--type", "container", name)
	if err != nil {
		if isNoSuchContainer(err) {
			return info, nil
		}
		return nil, err
	}

	var inspects []dockerInspect
	if err := json.Unmarshal([]byte(output), &inspects); err != nil {
		return nil, fmt.Errorf("failed to parse inspect output: %w", err)
	}
	if len(inspects) == 0 {
		return info, nil
	}

	inspect := inspects[0]
	info.Status = statusFromState(inspect.State.Status)
	info.Image = inspect.Config.Image
	info.StartedAt = inspect.State.StartedAt

	return info, nil
}

// Logs returns the container's stdout and stderr lines
func (r *DockerRuntime) Logs(ctx context.Context, name string) ([]string, error) {
	output, err := r.runCmd(ctx, "logs", name)
	if err != nil {
		return nil, err
	}
	return splitLines(output), nil
}

func splitLines(s string) []string {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(s))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}

// psEntry is one line of "ps --format '{{json .}}'". Docker reports Names
// as a string, podman as a list.
type psEntry struct {
	Names     json.RawMessage `json:"Names"`
	Image     string          `json:"Image"`
	State     string          `json:"State"`
	StartedAt json.RawMessage `json:"StartedAt"`
}

func (e psEntry) name() string {
	var s string
	if json.Unmarshal(e.Names, &s) == nil {
		return strings.Split(s, ",")[0]
	}
	var list []string
	if json.Unmarshal(e.Names, &list) == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}

// List returns all containers whose name starts with prefix
func (r *DockerRuntime) List(ctx context.Context, prefix string) ([]*ContainerInfo, error) {
	output, err := r.runCmd(ctx, "ps", "-a", "--filter", "name=^"+prefix, "--format", "{{json .}}")
	if err != nil {
		return nil, err
	}

	var containers []*ContainerInfo
	for _, line := range bytes.Split([]byte(output), []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var e psEntry
		if err := json.Unmarshal(line, &e); err != nil {
			logging.Debug("skipping unparsable ps line", "error", err)
			continue
		}
		name := e.name()
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		containers = append(containers, &ContainerInfo{
			Name:   name,
			Image:  e.Image,
			Status: statusFromState(e.State),
		})
	}

	return containers, nil
}

var _ Runtime = (*DockerRuntime)(nil)
