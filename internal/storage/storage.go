// Package storage derives and manages per-node data directories.
//
// Nodes are grouped under parent directories holding a fixed number of
// nodes each. With capacity 4 and template "swarm_data_xx", node 5 lives in
// <root>/swarm_data_02/node_05.
package storage

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"

	"github.com/ruche-hive/ruche/internal/errors"
	"github.com/ruche-hive/ruche/internal/logging"
	"github.com/ruche-hive/ruche/internal/node"
	"github.com/ruche-hive/ruche/internal/system"
)

// DirMode is applied to every node directory after creation.
const DirMode fs.FileMode = 0o755

const placeholder = "xx"

var parentTemplatePattern = regexp.MustCompile(`^([\w-]+)*[^x]?xx$`)

// Layout describes where node directories live.
type Layout struct {
	Root        string
	Template    string
	PerDirLimit int
}

// ValidateTemplate checks a parent directory template.
func ValidateTemplate(template string) error {
	if !parentTemplatePattern.MatchString(template) {
		return errors.InvalidTemplate("directory", template)
	}
	return nil
}

// DirIndex returns the 1-based parent directory index for a node id.
func DirIndex(id, capacity int) int {
	return ((id - 1) / capacity) + 1
}

// ParentDirName resolves the parent directory name for a node id.
func ParentDirName(id int, template string, capacity int) (string, error) {
	if err := ValidateTemplate(template); err != nil {
		return "", err
	}
	if capacity < 1 {
		return "", errors.InvalidTemplate("directory capacity", fmt.Sprint(capacity))
	}
	idx := node.FormatID(DirIndex(id, capacity))
	return strings.ReplaceAll(template, placeholder, idx), nil
}

// NodePath returns root/parent/node_XX for the given id. The join refuses
// to escape the root even if a parent component is a symlink.
func (l Layout) NodePath(id int) (string, error) {
	parent, err := ParentDirName(id, l.Template, l.PerDirLimit)
	if err != nil {
		return "", err
	}
	rel := filepath.Join(parent, node.ContainerName(id))
	path, err := securejoin.SecureJoin(l.Root, rel)
	if err != nil {
		return "", errors.Upstream(errors.OriginFilesystem, "failed to resolve node directory", err)
	}
	return path, nil
}

// CreateNodeDir creates the directory for a node and applies DirMode. It
// fails with DirectoryAlreadyExists when anything is already at path.
func CreateNodeDir(fsys system.FileSystem, path string) error {
	if fsys.Exists(path) {
		return errors.DirectoryAlreadyExists(path)
	}

	logging.Debug("creating node directory", "path", path)
	if err := fsys.MkdirAll(path, DirMode); err != nil {
		return errors.Upstream(errors.OriginFilesystem, fmt.Sprintf("failed to create directory %s", path), err)
	}
	// MkdirAll is subject to the umask.
	if err := fsys.Chmod(path, DirMode); err != nil {
		return errors.Upstream(errors.OriginFilesystem, fmt.Sprintf("failed to set permissions on %s", path), err)
	}
	return nil
}

// RemoveNodeDir removes a node directory tree. A missing directory is not
// an error.
func RemoveNodeDir(fsys system.FileSystem, path string) error {
	logging.Debug("removing node directory", "path", path)
	if err := fsys.RemoveAll(path); err != nil {
		return errors.Upstream(errors.OriginFilesystem, fmt.Sprintf("failed to remove directory %s", path), err)
	}
	return nil
}
