// Package node defines the bee node record and its derived views.
package node

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Identity bounds. A fleet holds at most MaxID nodes.
const (
	MinID    = 1
	MaxID    = 99
	Capacity = MaxID - MinID + 1
)

// ContainerPrefix is prepended to the padded id to name a node's container
// and its directory leaf.
const ContainerPrefix = "node_"

// DataDir is where the node's directory is mounted inside its container.
const DataDir = "/home/bee/.bee"

// Record is the persisted unit of truth for a node. Its directory is not
// stored; it is recomputed from the id and storage configuration.
type Record struct {
	ID              int       `json:"id"`
	Neighborhood    string    `json:"neighborhood"`
	FullNode        bool      `json:"full_node"`
	SwapEnable      bool      `json:"swap_enable"`
	ReserveDoubling bool      `json:"reserve_doubling"`
	CreatedAt       time.Time `json:"created_at"`
}

// Name returns the container name for the record.
func (r Record) Name() string {
	return ContainerName(r.ID)
}

// Info is the read-only view served to operators. It is never persisted.
type Info struct {
	ID              int       `json:"id"`
	Name            string    `json:"name"`
	Image           string    `json:"image"`
	PasswordPath    string    `json:"password_path"`
	DataDir         string    `json:"data_dir"`
	APIPort         string    `json:"api_port"`
	P2PPort         string    `json:"p2p_port"`
	Neighborhood    string    `json:"neighborhood"`
	FullNode        bool      `json:"full_node"`
	SwapEnable      bool      `json:"swap_enable"`
	ReserveDoubling bool      `json:"reserve_doubling"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
	Status          string    `json:"status,omitempty"`
}

// ValidID reports whether id lies within [MinID, MaxID].
func ValidID(id int) bool {
	return id >= MinID && id <= MaxID
}

// FormatID zero-pads an id to two digits.
func FormatID(id int) string {
	return fmt.Sprintf("%02d", id)
}

// ContainerName returns "node_" followed by the padded id.
func ContainerName(id int) string {
	return ContainerPrefix + FormatID(id)
}

// ParseName extracts the id from a container name such as "node_07".
func ParseName(name string) (int, bool) {
	rest, ok := strings.CutPrefix(name, ContainerPrefix)
	if !ok || rest == "" {
		return 0, false
	}
	id, err := strconv.Atoi(rest)
	if err != nil || !ValidID(id) {
		return 0, false
	}
	return id, true
}

// ParseID parses an operator-supplied id, accepting either the bare number
// or a container name.
func ParseID(s string) (int, error) {
	if id, ok := ParseName(s); ok {
		return id, nil
	}
	id, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid node id %q", s)
	}
	if !ValidID(id) {
		return 0, fmt.Errorf("node id %d out of range [%d, %d]", id, MinID, MaxID)
	}
	return id, nil
}

// IDs extracts the ids of the given records, preserving order.
func IDs(records []Record) []int {
	ids := make([]int, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	return ids
}
