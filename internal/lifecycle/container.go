package lifecycle

import (
	"fmt"
	"os"

	"github.com/ruche-hive/ruche/internal/errors"
	"github.com/ruche-hive/ruche/internal/node"
	"github.com/ruche-hive/ruche/internal/port"
	"github.com/ruche-hive/ruche/internal/runtime"
)

// Host addresses the two port classes are published on.
const (
	APIHostIP = "127.0.0.1"
	P2PHostIP = "0.0.0.0"
)

// DockerHostGateway lets a container reach services on the host when
// network.use_docker_host is set.
const DockerHostGateway = "host.docker.internal:host-gateway"

// info derives the read-only view of rec from the current configuration.
// Templates are validated on every call.
func (o *Orchestrator) info(rec node.Record) (*node.Info, error) {
	apiPort, err := port.Resolve(rec.ID, o.cfg.Network.APIPort)
	if err != nil {
		return nil, err
	}
	p2pPort, err := port.Resolve(rec.ID, o.cfg.Network.P2PPort)
	if err != nil {
		return nil, err
	}
	dataDir, err := o.cfg.Layout().NodePath(rec.ID)
	if err != nil {
		return nil, err
	}

	return &node.Info{
		ID:              rec.ID,
		Name:            rec.Name(),
		Image:           o.cfg.Bee.Image,
		PasswordPath:    o.cfg.Bee.PasswordPath,
		DataDir:         dataDir,
		APIPort:         apiPort,
		P2PPort:         p2pPort,
		Neighborhood:    rec.Neighborhood,
		FullNode:        rec.FullNode,
		SwapEnable:      rec.SwapEnable,
		ReserveDoubling: rec.ReserveDoubling,
		CreatedAt:       rec.CreatedAt,
	}, nil
}

// containerUser returns the uid:gid the container runs as.
func (o *Orchestrator) containerUser() string {
	if o.cfg.Runtime.User != "" {
		return o.cfg.Runtime.User
	}
	return fmt.Sprintf("%d:%d", os.Getuid(), os.Getgid())
}

// nodeEnv builds the bee environment for a node.
func (o *Orchestrator) nodeEnv(rec node.Record, info *node.Info) []string {
	return []string{
		"BEE_API_ADDR=0.0.0.0:" + info.APIPort,
		"BEE_BLOCKCHAIN_RPC_ENDPOINT=" + o.cfg.Chains.GnoRPC,
		"BEE_DATA_DIR=" + node.DataDir,
		fmt.Sprintf("BEE_FULL_NODE=%t", rec.FullNode),
		fmt.Sprintf("BEE_NAT_ADDR=%s:%s", o.cfg.Network.NATAddr, info.P2PPort),
		"BEE_P2P_ADDR=:" + info.P2PPort,
		"BEE_PASSWORD=" + o.cfg.Bee.Password,
		fmt.Sprintf("BEE_RESERVE_CAPACITY_DOUBLING=%t", rec.ReserveDoubling),
		"BEE_RESOLVER_OPTIONS=" + o.cfg.Chains.EthRPC,
		fmt.Sprintf("BEE_SWAP_ENABLE=%t", rec.SwapEnable),
		"BEE_TARGET_NEIGHBORHOOD=" + rec.Neighborhood,
		"BEE_WELCOME_MESSAGE=" + o.cfg.Bee.WelcomeMsg,
	}
}

// createOptions builds the container spec for a node. The container is
// started as part of creation.
func (o *Orchestrator) createOptions(rec node.Record, info *node.Info) (runtime.CreateOptions, error) {
	extra, err := o.cfg.Runtime.SplitExtraArgs()
	if err != nil {
		return runtime.CreateOptions{}, errors.ConfigError("invalid runtime.extra_args", err)
	}

	opts := runtime.CreateOptions{
		Name:  info.Name,
		Image: o.cfg.Bee.Image,
		Cmd:   []string{"start"},
		User:  o.containerUser(),
		Env:   o.nodeEnv(rec, info),
		Mounts: []runtime.Mount{
			{HostPath: info.DataDir, ContainerPath: node.DataDir},
		},
		Ports: []runtime.PortBinding{
			{HostIP: APIHostIP, HostPort: info.APIPort, ContainerPort: info.APIPort},
			{HostIP: P2PHostIP, HostPort: info.P2PPort, ContainerPort: info.P2PPort},
		},
		RestartPolicy: runtime.RestartUnlessStopped,
		ExtraArgs:     extra,
		Pull:          o.cfg.Runtime.PullImage,
		Start:         true,
	}
	if o.cfg.Network.UseDockerHost {
		opts.ExtraHosts = []string{DockerHostGateway}
	}

	return opts, nil
}
