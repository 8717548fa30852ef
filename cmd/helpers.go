package cmd

import (
	"context"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ruche-hive/ruche/internal/api"
	"github.com/ruche-hive/ruche/internal/client"
	"github.com/ruche-hive/ruche/internal/errors"
	"github.com/ruche-hive/ruche/internal/logging"
	"github.com/ruche-hive/ruche/internal/node"
)

// newClient returns an API client from the --server and --token flags,
// falling back to the environment.
func newClient() *client.Client {
	url := serverURL
	if url == "" {
		url = os.Getenv(client.EnvURL)
	}
	token := apiToken
	if token == "" {
		token = os.Getenv(client.EnvToken)
	}
	logging.Debug("using management API", "url", url)
	return client.New(url, token)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// parseNodeArg parses a node id argument. Out-of-range numbers are
// reported as unknown nodes.
func parseNodeArg(arg string) (int, error) {
	id, err := node.ParseID(arg)
	if err == nil {
		return id, nil
	}
	if n, convErr := strconv.Atoi(arg); convErr == nil {
		return 0, errors.NodeNotFound(n)
	}
	return 0, errors.ValidationError(err.Error())
}

// nodeOrAll validates the [id|--all] argument form.
func nodeOrAll(all bool, args []string) (int, error) {
	switch {
	case all && len(args) > 0:
		return 0, errors.ValidationError("pass either a node id or --all, not both")
	case all:
		return 0, nil
	case len(args) != 1:
		return 0, errors.ValidationError("a node id is required (or --all)")
	}
	return parseNodeArg(args[0])
}

// reportBulk prints one line per node of a bulk operation.
func reportBulk(verb string, results []api.BulkItem) {
	if len(results) == 0 {
		logInfo("No nodes found")
		return
	}
	for _, r := range results {
		if r.OK {
			logSuccess("%s %s", verb, r.Name)
		} else {
			logError("%s: %s", r.Name, r.Error)
		}
	}
}
