package registry

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	consulapi "github.com/hashicorp/consul/api"
)

// fakeKV serves the subset of the Consul KV HTTP API the registry uses.
type fakeKV struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (f *fakeKV) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/v1/kv/")
	recurse := r.URL.Query().Has("recurse")

	f.mu.Lock()
	defer f.mu.Unlock()

	w.Header().Set("X-Consul-Index", "1")
	w.Header().Set("X-Consul-KnownLeader", "true")
	w.Header().Set("X-Consul-LastContact", "0")

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.data[key] = body
		_, _ = w.Write([]byte("true"))
	case http.MethodDelete:
		for k := range f.data {
			if k == key || (recurse && strings.HasPrefix(k, key)) {
				delete(f.data, k)
			}
		}
		_, _ = w.Write([]byte("true"))
	case http.MethodGet:
		var pairs []*consulapi.KVPair
		for k, v := range f.data {
			if k == key || (recurse && strings.HasPrefix(k, key)) {
				pairs = append(pairs, &consulapi.KVPair{Key: k, Value: v})
			}
		}
		if len(pairs) == 0 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(pairs)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestConsul(t *testing.T) *Consul {
	t.Helper()
	srv := httptest.NewServer(&fakeKV{data: make(map[string][]byte)})
	t.Cleanup(srv.Close)

	reg, err := NewConsul(srv.URL, "ruche/nodes/")
	if err != nil {
		t.Fatalf("NewConsul failed: %v", err)
	}
	return reg
}

func TestConsul_KeyLayout(t *testing.T) {
	kv := &fakeKV{data: make(map[string][]byte)}
	srv := httptest.NewServer(kv)
	defer srv.Close()

	reg, err := NewConsul(srv.URL, "ruche/nodes/")
	if err != nil {
		t.Fatalf("NewConsul failed: %v", err)
	}
	if err := reg.Add(t.Context(), record(5)); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	kv.mu.Lock()
	defer kv.mu.Unlock()
	if len(kv.data) != 1 {
		t.Fatalf("keys = %d, want 1", len(kv.data))
	}
	for k := range kv.data {
		if !strings.HasPrefix(k, "ruche/nodes/05/") {
			t.Errorf("key = %q, want prefix ruche/nodes/05/", k)
		}
	}
}
