package registry

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestNodeRow_RoundTrip(t *testing.T) {
	rec := record(9)
	rec.SwapEnable = true

	got := rowFromRecord(rec).record()
	if got.ID != rec.ID || got.Neighborhood != rec.Neighborhood || got.SwapEnable != rec.SwapEnable {
		t.Errorf("record() = %+v, want %+v", got, rec)
	}
	if (nodeRow{}).TableName() != "nodes" {
		t.Errorf("TableName() = %q, want nodes", (nodeRow{}).TableName())
	}
}

// TestMySQL_Contract runs against a real server when RUCHE_TEST_MYSQL_DSN
// is set.
func TestMySQL_Contract(t *testing.T) {
	dsn := os.Getenv("RUCHE_TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("RUCHE_TEST_MYSQL_DSN not set")
	}

	reg, err := OpenMySQL(dsn)
	if err != nil {
		t.Fatalf("OpenMySQL failed: %v", err)
	}
	defer reg.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, id := range []int{5, 1, 3} {
		_ = reg.Delete(ctx, id)
	}
	for _, id := range []int{5, 1, 3} {
		if err := reg.Add(ctx, record(id)); err != nil {
			t.Fatalf("Add(%d) failed: %v", id, err)
		}
	}
	defer func() {
		for _, id := range []int{1, 5} {
			_ = reg.Delete(ctx, id)
		}
	}()

	list, err := reg.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	prev := 0
	for _, r := range list {
		if r.ID < prev {
			t.Fatalf("List not sorted: %v", list)
		}
		prev = r.ID
	}

	if err := reg.Delete(ctx, 3); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := reg.Get(ctx, 3); ok {
		t.Error("Get(3) should be absent after delete")
	}
}
