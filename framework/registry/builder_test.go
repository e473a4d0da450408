package registry_test

import (
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/loomkit/loom/framework/metadata"
	"github.com/loomkit/loom/framework/registry"
)

// ── fixtures ──────────────────────────────────────────────────────────────────

// buildCount tracks constructions of Counted across a single test.
var buildCount atomic.Int64

type Counter interface{ Value() int64 }

type Counted struct{}

func (c *Counted) Init() error {
	buildCount.Add(1)
	return nil
}

func (c *Counted) Value() int64 { return buildCount.Load() }

// failBuilds makes Broken constructions fail while true.
var failBuilds atomic.Bool

type Broken struct{}

func (b *Broken) Init() error {
	if failBuilds.Load() {
		return errors.New("boom")
	}
	return nil
}

func builderMeta(lifetime metadata.Lifetime) *metadata.Table {
	return metadata.NewTable().
		Declare(reflect.TypeOf(Counted{}), metadata.Descriptor{
			Contracts: []reflect.Type{registry.TypeOf[Counter]()},
			Lifetime:  lifetime,
		}).
		Declare(reflect.TypeOf(Broken{}), metadata.Descriptor{
			Contracts: []reflect.Type{registry.TypeOf[*Broken]()},
			Lifetime:  lifetime,
		})
}

// ── TransientBuilder ──────────────────────────────────────────────────────────

func TestTransient_FreshInstancePerResolution(t *testing.T) {
	buildCount.Store(0)
	c := registry.New(registry.WithMetadata(builderMeta(metadata.Transient)))
	if _, err := c.Apply(Counted{}, nil, nil, "", ""); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	first := registry.MustGet[Counter](c)
	second := registry.MustGet[Counter](c)

	if first == second {
		t.Error("transient resolutions returned the identical instance")
	}
	if n := buildCount.Load(); n != 2 {
		t.Errorf("constructions: got %d want 2", n)
	}
}

// ── SingletonBuilder ──────────────────────────────────────────────────────────

func TestSingleton_SameInstanceAcrossResolutions(t *testing.T) {
	buildCount.Store(0)
	c := registry.New(registry.WithMetadata(builderMeta(metadata.Singleton)))
	if _, err := c.Apply(Counted{}, nil, nil, "", ""); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	first := registry.MustGet[Counter](c)
	second := registry.MustGet[Counter](c)

	if first != second {
		t.Error("singleton resolutions returned different instances")
	}
	if n := buildCount.Load(); n != 1 {
		t.Errorf("constructions: got %d want 1", n)
	}
}

func TestSingleton_ConcurrentFirstBuildConstructsOnce(t *testing.T) {
	buildCount.Store(0)
	c := registry.New(registry.WithMetadata(builderMeta(metadata.Singleton)))
	if _, err := c.Apply(Counted{}, nil, nil, "", ""); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	const goroutines = 50
	var (
		start   sync.WaitGroup
		done    sync.WaitGroup
		results [goroutines]Counter
	)
	start.Add(1)
	done.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer done.Done()
			start.Wait()
			v, ok, err := registry.Get[Counter](c)
			if err != nil || !ok {
				t.Errorf("goroutine %d: ok=%v err=%v", i, ok, err)
				return
			}
			results[i] = v
		}(i)
	}
	start.Done()
	done.Wait()

	if n := buildCount.Load(); n != 1 {
		t.Fatalf("constructions under contention: got %d want exactly 1", n)
	}
	for i := 1; i < goroutines; i++ {
		if results[i] != results[0] {
			t.Fatalf("goroutine %d observed a different instance", i)
		}
	}
}

func TestSingleton_FailedConstructionDoesNotPoisonBuilder(t *testing.T) {
	c := registry.New(registry.WithMetadata(builderMeta(metadata.Singleton)))
	if _, err := c.Apply(Broken{}, nil, nil, "", ""); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	failBuilds.Store(true)
	_, _, err := registry.Get[*Broken](c)
	var ce *registry.ConstructionError
	if !errors.As(err, &ce) {
		t.Fatalf("got %v, want ConstructionError", err)
	}

	failBuilds.Store(false)
	v, ok, err := registry.Get[*Broken](c)
	if err != nil || !ok || v == nil {
		t.Fatalf("recovery resolution: v=%v ok=%v err=%v", v, ok, err)
	}
}

// ── Connect contract ──────────────────────────────────────────────────────────

func TestBuilder_BuildBeforeConnectFails(t *testing.T) {
	b := registry.NewTransientBuilder(reflect.TypeOf(Counted{}), nil, nil)

	_, err := b.Build()

	var ce *registry.ConstructionError
	if !errors.As(err, &ce) {
		t.Fatalf("got %v, want ConstructionError", err)
	}
	if !errors.Is(err, registry.ErrNotConnected) {
		t.Errorf("got %v, want ErrNotConnected cause", err)
	}
}

func TestBuilder_ConnectIsIdempotentForSameContainer(t *testing.T) {
	c := registry.New()
	b := registry.NewSingletonBuilder(reflect.TypeOf(Counted{}), nil, nil)

	if err := b.Connect(c); err != nil {
		t.Fatalf("first Connect: %v", err)
	}
	if err := b.Connect(c); err != nil {
		t.Errorf("reconnecting the same container should be a no-op, got %v", err)
	}
}

func TestBuilder_ConnectRejectsSecondContainer(t *testing.T) {
	b := registry.NewSingletonBuilder(reflect.TypeOf(Counted{}), nil, nil)

	if err := b.Connect(registry.New()); err != nil {
		t.Fatalf("first Connect: %v", err)
	}
	if err := b.Connect(registry.New()); !errors.Is(err, registry.ErrAlreadyConnected) {
		t.Errorf("got %v, want ErrAlreadyConnected", err)
	}
}
