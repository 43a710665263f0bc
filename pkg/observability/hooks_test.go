package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Chain hooks
	ch := NoopChainHooks{}
	ch.OnChainStart(ctx, 1000, 42)
	ch.OnStepBatch(ctx, 500, 1000)
	ch.OnChainComplete(ctx, 1000, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "graph")
	c.OnCacheMiss(ctx, "run")
	c.OnCacheSet(ctx, "run", 1024)

	// Store hooks
	s := NoopStoreHooks{}
	s.OnSave(ctx, "run-id", time.Second, nil)
	s.OnLoad(ctx, "run-id", true, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Chain().(NoopChainHooks); !ok {
		t.Error("Chain() should return NoopChainHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Store().(NoopStoreHooks); !ok {
		t.Error("Store() should return NoopStoreHooks by default")
	}

	// Set custom hooks
	customChain := &testChainHooks{}
	SetChainHooks(customChain)
	if Chain() != customChain {
		t.Error("SetChainHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customStore := &testStoreHooks{}
	SetStoreHooks(customStore)
	if Store() != customStore {
		t.Error("SetStoreHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Chain().(NoopChainHooks); !ok {
		t.Error("Reset() should restore NoopChainHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testChainHooks{}
	SetChainHooks(custom)

	// Setting nil should be ignored
	SetChainHooks(nil)

	if Chain() != custom {
		t.Error("SetChainHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testChainHooks struct{ NoopChainHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testStoreHooks struct{ NoopStoreHooks }
