// Package tui provides terminal user interface components for ruche.
//
// The node picker lists every node grouped by its parent storage directory
// and returns the action chosen by the operator:
//
//	result, err := tui.RunPicker(nodes)
//	switch result.Action {
//	case tui.ActionLogs:
//	    // Show logs of result.Node
//	case tui.ActionStart, tui.ActionStop, tui.ActionRecreate:
//	    // Drive result.Node's container
//	case tui.ActionDelete:
//	    // Request and confirm deletion
//	case tui.ActionNew:
//	    // Provision a node
//	}
//
// Keys: enter (logs), s (start), x (stop), r (recreate), n (new),
// d (delete), / (filter), q or esc (quit). Group headers are skipped
// while navigating.
package tui
