package memory

import (
	"context"
	"testing"
)

func TestAnswerStoresAreScopedPerClient(t *testing.T) {
	ctx := context.Background()
	stores := NewAnswerStores()

	alice := stores.ForClient("alice")
	bob := stores.ForClient("bob")

	if _, ok, _ := alice.GetItem(ctx, "demo"); ok {
		t.Fatalf("expected empty store")
	}
	if err := alice.SetItem(ctx, "demo", "[1,0]"); err != nil {
		t.Fatalf("set item: %v", err)
	}

	got, ok, err := stores.ForClient("alice").GetItem(ctx, "demo")
	if err != nil || !ok || got != "[1,0]" {
		t.Fatalf("expected alice record, got %q ok=%v err=%v", got, ok, err)
	}
	if _, ok, _ := bob.GetItem(ctx, "demo"); ok {
		t.Fatalf("expected bob to see nothing")
	}
}
