package ws

import (
	"fmt"
	"sort"
	"sync"
	"testing"
)

func TestRegistryBindLookupUnbind(t *testing.T) {
	registry := NewRegistry()

	registry.Bind("alice", "conn-1")

	connID, ok := registry.Lookup("alice")
	if !ok || connID != "conn-1" {
		t.Fatalf("Lookup(alice) = %q, %v; want conn-1, true", connID, ok)
	}

	if removed := registry.Unbind("conn-1"); !removed {
		t.Error("Unbind of a live connection must report removal")
	}
	if _, ok := registry.Lookup("alice"); ok {
		t.Error("alice must be absent after unbind")
	}

	// Unbinding an unknown connection id is a no-op
	if removed := registry.Unbind("conn-1"); removed {
		t.Error("Unbind of an unknown connection must be a no-op")
	}
}

func TestRegistryLastBindWins(t *testing.T) {
	registry := NewRegistry()

	registry.Bind("alice", "conn-1")
	registry.Bind("alice", "conn-2")

	connID, ok := registry.Lookup("alice")
	if !ok || connID != "conn-2" {
		t.Fatalf("Lookup(alice) = %q; want the newer conn-2", connID)
	}

	// The superseded connection must not knock the user offline
	if removed := registry.Unbind("conn-1"); removed {
		t.Error("stale connection id must not remove the new binding")
	}
	if connID, ok := registry.Lookup("alice"); !ok || connID != "conn-2" {
		t.Errorf("alice must remain bound to conn-2, got %q, %v", connID, ok)
	}

	if removed := registry.Unbind("conn-2"); !removed {
		t.Error("current connection id must remove the binding")
	}
}

func TestRegistryOnlineUserIDs(t *testing.T) {
	registry := NewRegistry()

	if ids := registry.OnlineUserIDs(); len(ids) != 0 {
		t.Fatalf("fresh registry must be empty, got %v", ids)
	}

	// The presence set equals the users whose most recent operation was a
	// bind without a matching unbind.
	registry.Bind("alice", "conn-1")
	registry.Bind("bob", "conn-2")
	registry.Bind("carol", "conn-3")
	registry.Unbind("conn-2")
	registry.Bind("alice", "conn-4")

	ids := registry.OnlineUserIDs()
	sort.Strings(ids)
	want := []string{"alice", "carol"}
	if len(ids) != len(want) {
		t.Fatalf("OnlineUserIDs() = %v; want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("OnlineUserIDs() = %v; want %v", ids, want)
		}
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			userID := fmt.Sprintf("user-%d", i%10)
			connID := fmt.Sprintf("conn-%d", i)
			registry.Bind(userID, connID)
			registry.Lookup(userID)
			registry.OnlineUserIDs()
			registry.Unbind(connID)
		}(i)
	}
	wg.Wait()
}
