package tui

import (
	"testing"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ruche-hive/ruche/internal/node"
)

func TestGroupKey(t *testing.T) {
	tests := []struct {
		name string
		info *node.Info
		want string
	}{
		{"parent directory", testNode(1, "swarm_data_01", ""), "/media/ruche/swarm_data_01"},
		{"no data dir", &node.Info{ID: 1}, "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := groupKey(tt.info); got != tt.want {
				t.Errorf("groupKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuildGroupedItems(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if items := buildGroupedItems(nil); items != nil {
			t.Errorf("expected nil, got %d items", len(items))
		}
	})

	t.Run("groups sorted with nodes in id order", func(t *testing.T) {
		items := buildGroupedItems([]*node.Info{
			testNode(51, "swarm_data_02", "running"),
			testNode(2, "swarm_data_01", "running"),
			testNode(1, "swarm_data_01", "stopped"),
		})

		want := []string{"ruche/swarm_data_01", "node_01", "node_02", "ruche/swarm_data_02", "node_51"}
		if len(items) != len(want) {
			t.Fatalf("got %d items, want %d", len(items), len(want))
		}
		for i, w := range want {
			var got string
			switch it := items[i].(type) {
			case headerItem:
				got = it.label
			case nodeItem:
				got = it.Title()
			}
			if got != w {
				t.Errorf("items[%d] = %q, want %q", i, got, w)
			}
		}
	})
}

func TestSkipHeaders(t *testing.T) {
	items := []list.Item{
		headerItem{label: "a"},
		nodeItem{info: testNode(1, "a", "")},
		headerItem{label: "b"},
		nodeItem{info: testNode(2, "b", "")},
	}
	l := list.New(items, newGroupedDelegate(), 80, 20)

	l.Select(2)
	skipHeaders(&l, 1)
	if l.Index() != 3 {
		t.Errorf("moving down from header: index = %d, want 3", l.Index())
	}

	l.Select(2)
	skipHeaders(&l, -1)
	if l.Index() != 1 {
		t.Errorf("moving up from header: index = %d, want 1", l.Index())
	}

	l.Select(0)
	skipHeaders(&l, -1)
	if l.Index() != 1 {
		t.Errorf("top header: index = %d, want 1", l.Index())
	}
}

func TestNavigationDirection(t *testing.T) {
	if navigationDirection(tea.KeyMsg{Type: tea.KeyUp}) != -1 {
		t.Error("up should be -1")
	}
	if navigationDirection(keyRune('k')) != -1 {
		t.Error("k should be -1")
	}
	if navigationDirection(keyRune('j')) != 1 {
		t.Error("j should be 1")
	}
}

func TestShortenGroupKey(t *testing.T) {
	tests := []struct{ in, want string }{
		{"/media/ruche/swarm_data_01", "ruche/swarm_data_01"},
		{"data/x", "data/x"},
		{"unknown", "unknown"},
	}
	for _, tt := range tests {
		if got := shortenGroupKey(tt.in); got != tt.want {
			t.Errorf("shortenGroupKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
