package runtime

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MockRuntime is a mock implementation of Runtime for testing
type MockRuntime struct {
	mu sync.RWMutex

	// Containers tracks the state of mock containers
	Containers map[string]*ContainerInfo

	// Created keeps the options each container was created with
	Created map[string]CreateOptions

	// LogLines maps container names to the lines Logs returns
	LogLines map[string][]string

	// Errors allows injecting errors for specific operations
	Errors map[string]error

	// CallLog records all method calls for verification
	CallLog []MockCall
}

// MockCall represents a recorded method call
type MockCall struct {
	Method string
	Args   []interface{}
}

// NewMockRuntime creates a new mock runtime
func NewMockRuntime() *MockRuntime {
	return &MockRuntime{
		Containers: make(map[string]*ContainerInfo),
		Created:    make(map[string]CreateOptions),
		LogLines:   make(map[string][]string),
		Errors:     make(map[string]error),
		CallLog:    make([]MockCall, 0),
	}
}

func (m *MockRuntime) record(method string, args ...interface{}) {
	m.CallLog = append(m.CallLog, MockCall{Method: method, Args: args})
}

// SetError sets an error to be returned for a specific operation
func (m *MockRuntime) SetError(operation string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[operation] = err
}

// ClearError removes an injected error
func (m *MockRuntime) ClearError(operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Errors, operation)
}

// AddContainer adds a container to the mock
func (m *MockRuntime) AddContainer(name string, status ContainerStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Containers[name] = &ContainerInfo{
		Name:   name,
		Status: status,
	}
}

// SetLogs sets the lines returned by Logs for a container
func (m *MockRuntime) SetLogs(name string, lines []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LogLines[name] = lines
}

// CreatedWith returns the options a container was last created with
func (m *MockRuntime) CreatedWith(name string) (CreateOptions, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	opts, ok := m.Created[name]
	return opts, ok
}

// GetCalls returns all recorded calls
func (m *MockRuntime) GetCalls() []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	calls := make([]MockCall, len(m.CallLog))
	copy(calls, m.CallLog)
	return calls
}

// GetCallsFor returns all calls for a specific method
func (m *MockRuntime) GetCallsFor(method string) []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var calls []MockCall
	for _, call := range m.CallLog {
		if call.Method == method {
			calls = append(calls, call)
		}
	}
	return calls
}

// Reset clears all state
func (m *MockRuntime) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Containers = make(map[string]*ContainerInfo)
	m.Created = make(map[string]CreateOptions)
	m.LogLines = make(map[string][]string)
	m.Errors = make(map[string]error)
	m.CallLog = make([]MockCall, 0)
}

// Name returns the runtime identifier
func (m *MockRuntime) Name() string {
	return "mock"
}

// Create creates a new container
func (m *MockRuntime) Create(ctx context.Context, opts CreateOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Create", opts)

	if err, ok := m.Errors["Create"]; ok {
		return err
	}
	if _, exists := m.Containers[opts.Name]; exists {
		return fmt.Errorf("container name %s is already in use", opts.Name)
	}

	status := StatusStopped
	if opts.Start {
		if err, ok := m.Errors["Start"]; ok {
			m.Containers[opts.Name] = &ContainerInfo{Name: opts.Name, Image: opts.Image, Status: StatusStopped}
			m.Created[opts.Name] = opts
			return err
		}
		status = StatusRunning
	}

	m.Containers[opts.Name] = &ContainerInfo{
		Name:   opts.Name,
		Image:  opts.Image,
		Status: status,
	}
	m.Created[opts.Name] = opts

	return nil
}

// Start starts an existing container
func (m *MockRuntime) Start(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Start", name)

	if err, ok := m.Errors["Start"]; ok {
		return err
	}

	if container, ok := m.Containers[name]; ok {
		container.Status = StatusRunning
		return nil
	}

	return fmt.Errorf("no such container: %s", name)
}

// Stop stops a running container
func (m *MockRuntime) Stop(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Stop", name)

	if err, ok := m.Errors["Stop"]; ok {
		return err
	}

	if container, ok := m.Containers[name]; ok {
		container.Status = StatusStopped
		return nil
	}

	return fmt.Errorf("no such container: %s", name)
}

// Remove removes a container; missing containers are ignored
func (m *MockRuntime) Remove(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.record("Remove", name)

	if err, ok := m.Errors["Remove"]; ok {
		return err
	}

	delete(m.Containers, name)
	return nil
}

// Status returns detailed status of a container
func (m *MockRuntime) Status(ctx context.Context, name string) (*ContainerInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.Errors["Status"]; ok {
		return nil, err
	}

	if container, ok := m.Containers[name]; ok {
		c := *container
		return &c, nil
	}

	return &ContainerInfo{Name: name, Status: StatusNotFound}, nil
}

// Logs returns the configured log lines for a container
func (m *MockRuntime) Logs(ctx context.Context, name string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.Errors["Logs"]; ok {
		return nil, err
	}
	if _, ok := m.Containers[name]; !ok {
		return nil, fmt.Errorf("no such container: %s", name)
	}

	return m.LogLines[name], nil
}

// List returns containers whose name starts with prefix, sorted by name
func (m *MockRuntime) List(ctx context.Context, prefix string) ([]*ContainerInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err, ok := m.Errors["List"]; ok {
		return nil, err
	}

	var containers []*ContainerInfo
	for name, container := range m.Containers {
		if strings.HasPrefix(name, prefix) {
			c := *container
			containers = append(containers, &c)
		}
	}
	sort.Slice(containers, func(i, j int) bool { return containers[i].Name < containers[j].Name })

	return containers, nil
}

var _ Runtime = (*MockRuntime)(nil)
