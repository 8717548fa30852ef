package port

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ruche-hive/ruche/internal/errors"
	"github.com/ruche-hive/ruche/internal/node"
)

// Placeholder is replaced by the zero-padded node id.
const Placeholder = "xx"

// MaxPort is the highest TCP port a template may resolve to.
const MaxPort = 65535

var templatePattern = regexp.MustCompile(`^\d{1,3}xx$`)

// Allocate returns the lowest node id in [node.MinID, node.MaxID] not
// present in existing.
func Allocate(existing []int) (int, error) {
	if len(existing) >= node.Capacity {
		return 0, errors.CapacityExceeded(len(existing))
	}

	used := make(map[int]bool, len(existing))
	for _, id := range existing {
		used[id] = true
	}

	for id := node.MinID; id <= node.MaxID; id++ {
		if !used[id] {
			return id, nil
		}
	}

	return 0, errors.IDUnavailable()
}

// ValidateTemplate checks a port template against ^\d{1,3}xx$.
func ValidateTemplate(template string) error {
	if !templatePattern.MatchString(template) {
		return errors.InvalidTemplate("port", template)
	}
	return nil
}

// Resolve substitutes the node id into a port template. The template is
// validated on every call, and the result must not exceed MaxPort.
func Resolve(id int, template string) (string, error) {
	if err := ValidateTemplate(template); err != nil {
		return "", err
	}
	p := strings.Replace(template, Placeholder, node.FormatID(id), 1)
	if n, err := strconv.Atoi(p); err != nil || n > MaxPort {
		return "", errors.New(errors.KindInvalidTemplate,
			fmt.Sprintf("port template %q resolves to %s for node %d, above %d", template, p, id, MaxPort))
	}
	return p, nil
}

// ValidateRange checks that template resolves to a valid port for every
// node id. Ports grow with the id, so node.MaxID is the one to check.
func ValidateRange(template string) error {
	_, err := Resolve(node.MaxID, template)
	return err
}
