package main

import (
	"fmt"
	"log"
	"reflect"
	"time"

	"github.com/loomkit/loom/app"
	"github.com/loomkit/loom/framework/metadata"
	"github.com/loomkit/loom/framework/registry"
)

// ── Example services ─────────────────────────────────────────────────────────

// Clock tells the time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock Clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Greeter builds greetings stamped by the injected Clock.
type Greeter struct {
	Clock    Clock  // resolved from the container
	Greeting string // constructor parameter
}

func (g *Greeter) Greet(who string) string {
	return fmt.Sprintf("%s, %s! it is %s", g.Greeting, who, g.Clock.Now().Format(time.Kitchen))
}

func main() {
	// Declare which contracts each concrete type provides, and its lifetime.
	meta := metadata.NewTable().
		Declare(reflect.TypeOf(SystemClock{}), metadata.Descriptor{
			Contracts: []reflect.Type{metadata.Contract[Clock]()},
			Lifetime:  metadata.Singleton,
		}).
		Declare(reflect.TypeOf(Greeter{}), metadata.Descriptor{
			Contracts: []reflect.Type{metadata.Contract[*Greeter]()},
			Lifetime:  metadata.Transient,
		})

	application := app.New(meta) // loads .env automatically

	if _, err := application.Apply(SystemClock{}, nil, nil, "", ""); err != nil {
		log.Fatalf("registering clock: %v", err)
	}
	if _, err := application.Apply(Greeter{}, map[string]string{"Greeting": "Hello"}, nil, "", ""); err != nil {
		log.Fatalf("registering greeter: %v", err)
	}

	if err := application.Boot(); err != nil {
		log.Fatalf("boot: %v", err)
	}

	greeter := registry.MustGet[*Greeter](application.Container)
	fmt.Println(greeter.Greet("world"))

	// Serve GET /services and /healthz on INSPECT_ADDR (default :8090).
	if err := application.Run(); err != nil {
		log.Fatal(err)
	}
}
