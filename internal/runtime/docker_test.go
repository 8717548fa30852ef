package runtime

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ruche-hive/ruche/internal/system"
)

func newTestDocker() (*DockerRuntime, *system.MockExecutor) {
	exec := system.NewMockExecutor()
	return &DockerRuntime{Command: "docker", Exec: exec}, exec
}

func TestDockerRuntime_Name(t *testing.T) {
	rt := &DockerRuntime{Command: "docker"}

	if rt.Name() != "docker" {
		t.Errorf("Name() = %q, want %q", rt.Name(), "docker")
	}

	rt.Command = "podman"
	if rt.Name() != "podman" {
		t.Errorf("Name() = %q, want %q", rt.Name(), "podman")
	}
}

func TestCreateArgs(t *testing.T) {
	opts := CreateOptions{
		Name:          "node_05",
		Image:         "ethersphere/bee:2.3.2",
		Cmd:           []string{"start"},
		User:          "1000:1000",
		Env:           []string{"BEE_API_ADDR=0.0.0.0:1705", "BEE_P2P_ADDR=:1805"},
		Mounts:        []Mount{{HostPath: "/media/swarm_data_02/node_05", ContainerPath: "/home/bee/.bee"}},
		Ports:         []PortBinding{{HostIP: "127.0.0.1", HostPort: "1705", ContainerPort: "1705"}, {HostIP: "0.0.0.0", HostPort: "1805", ContainerPort: "1805"}},
		RestartPolicy: RestartUnlessStopped,
		ExtraHosts:    []string{"host.docker.internal:host-gateway"},
		ExtraArgs:     []string{"--log-opt", "max-size=10m"},
	}

	got := strings.Join(createArgs(opts), " ")
	want := "create --name node_05 --restart unless-stopped --user 1000:1000" +
		" -v /media/swarm_data_02/node_05:/home/bee/.bee" +
		" -p 127.0.0.1:1705:1705 -p 0.0.0.0:1805:1805" +
		" --add-host host.docker.internal:host-gateway" +
		" -e BEE_API_ADDR=0.0.0.0:1705 -e BEE_P2P_ADDR=:1805" +
		" --log-opt max-size=10m ethersphere/bee:2.3.2 start"
	if got != want {
		t.Errorf("createArgs() =\n%s\nwant\n%s", got, want)
	}
}

func TestCreateArgs_ReadOnlyMount(t *testing.T) {
	args := createArgs(CreateOptions{
		Name:   "node_01",
		Image:  "img",
		Mounts: []Mount{{HostPath: "/a", ContainerPath: "/b", ReadOnly: true}},
	})
	if !strings.Contains(strings.Join(args, " "), "-v /a:/b:ro") {
		t.Errorf("args = %v, want read-only mount", args)
	}
}

func TestDockerRuntime_CreatePullStart(t *testing.T) {
	rt, exec := newTestDocker()

	err := rt.Create(context.Background(), CreateOptions{
		Name:  "node_01",
		Image: "ethersphere/bee:2.3.2",
		Pull:  true,
		Start: true,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	var subs []string
	for _, c := range exec.Commands {
		subs = append(subs, c.Args[0])
	}
	if got := strings.Join(subs, ","); got != "pull,create,start" {
		t.Errorf("commands = %s, want pull,create,start", got)
	}
}

func TestDockerRuntime_CreateFailure(t *testing.T) {
	rt, exec := newTestDocker()
	exec.AddResponse("docker create", []byte("Conflict. The container name is already in use"), errors.New("exit status 125"))

	err := rt.Create(context.Background(), CreateOptions{Name: "node_01", Image: "img", Start: true})
	if err == nil {
		t.Fatal("Create should fail")
	}
	if !strings.Contains(err.Error(), "already in use") {
		t.Errorf("error should carry CLI output: %v", err)
	}
	if len(exec.CommandsFor("start")) != 0 {
		t.Error("start must not run after a failed create")
	}
}

func TestDockerRuntime_Remove_IgnoresMissing(t *testing.T) {
	rt, exec := newTestDocker()
	exec.AddResponse("docker rm", []byte("Error: No such container: node_09"), errors.New("exit status 1"))

	if err := rt.Remove(context.Background(), "node_09"); err != nil {
		t.Errorf("Remove() = %v, want nil for missing container", err)
	}

	cmd, _ := exec.LastCommand()
	if strings.Join(cmd.Args, " ") != "rm -f node_09" {
		t.Errorf("args = %v, want rm -f node_09", cmd.Args)
	}
}

func TestDockerRuntime_Remove_Failure(t *testing.T) {
	rt, exec := newTestDocker()
	exec.AddResponse("docker rm", []byte("permission denied"), errors.New("exit status 1"))

	if err := rt.Remove(context.Background(), "node_09"); err == nil {
		t.Error("Remove() should surface other failures")
	}
}

func TestDockerRuntime_Status(t *testing.T) {
	rt, exec := newTestDocker()
	exec.AddResponse("docker inspect", []byte(`[{
		"Name": "/node_01",
		"Config": {"Image": "ethersphere/bee:2.3.2"},
		"State": {"Status": "running", "Running": true, "StartedAt": "2024-01-01T00:00:00Z"}
	}]`), nil)

	info, err := rt.Status(context.Background(), "node_01")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if info.Status != StatusRunning {
		t.Errorf("Status = %q, want running", info.Status)
	}
	if info.Image != "ethersphere/bee:2.3.2" {
		t.Errorf("Image = %q", info.Image)
	}
	if info.StartedAt != "2024-01-01T00:00:00Z" {
		t.Errorf("StartedAt = %q", info.StartedAt)
	}
}

func TestDockerRuntime_Status_NotFound(t *testing.T) {
	rt, exec := newTestDocker()
	exec.AddResponse("docker inspect", []byte("Error: No such container: node_02"), errors.New("exit status 1"))

	info, err := rt.Status(context.Background(), "node_02")
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if info.Status != StatusNotFound {
		t.Errorf("Status = %q, want not-found", info.Status)
	}
}

func TestStatusFromState(t *testing.T) {
	tests := []struct {
		state string
		want  ContainerStatus
	}{
		{"running", StatusRunning},
		{"restarting", StatusRunning},
		{"exited", StatusStopped},
		{"created", StatusStopped},
		{"Exited", StatusStopped},
		{"weird", StatusUnknown},
	}
	for _, tt := range tests {
		if got := statusFromState(tt.state); got != tt.want {
			t.Errorf("statusFromState(%q) = %q, want %q", tt.state, got, tt.want)
		}
	}
}

func TestDockerRuntime_Logs(t *testing.T) {
	rt, exec := newTestDocker()
	exec.AddResponse("docker logs", []byte("line one\nline two\n"), nil)

	lines, err := rt.Logs(context.Background(), "node_01")
	if err != nil {
		t.Fatalf("Logs failed: %v", err)
	}
	if len(lines) != 2 || lines[0] != "line one" || lines[1] != "line two" {
		t.Errorf("Logs() = %q", lines)
	}
}

func TestDockerRuntime_List(t *testing.T) {
	rt, exec := newTestDocker()
	exec.AddResponse("docker ps", []byte(
		`{"Names":"node_01","Image":"ethersphere/bee:2.3.2","State":"running"}`+"\n"+
			`{"Names":["node_02"],"Image":"ethersphere/bee:2.3.2","State":"exited"}`+"\n"+
			`{"Names":"other","Image":"nginx","State":"running"}`+"\n"+
			"garbage\n"), nil)

	list, err := rt.List(context.Background(), "node_")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List() returned %d containers, want 2", len(list))
	}
	if list[0].Name != "node_01" || list[0].Status != StatusRunning {
		t.Errorf("list[0] = %+v", list[0])
	}
	if list[1].Name != "node_02" || list[1].Status != StatusStopped {
		t.Errorf("list[1] = %+v", list[1])
	}
}
