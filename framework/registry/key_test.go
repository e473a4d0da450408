package registry_test

import (
	"strings"
	"testing"

	"github.com/loomkit/loom/framework/registry"
)

type Pinger interface{ Ping() string }

// ── Key equality ──────────────────────────────────────────────────────────────

func TestKey_EqualityOverAllComponents(t *testing.T) {
	pinger := registry.TypeOf[Pinger]()

	tests := []struct {
		name string
		a, b registry.Key
		want bool
	}{
		{"identical unqualified", registry.Unqualified(pinger), registry.Unqualified(pinger), true},
		{"identical qualified", registry.KeyOf(pinger, "a", "1"), registry.KeyOf(pinger, "a", "1"), true},
		{"different name", registry.KeyOf(pinger, "a", ""), registry.KeyOf(pinger, "b", ""), false},
		{"different version", registry.KeyOf(pinger, "a", "1"), registry.KeyOf(pinger, "a", "2"), false},
		{"different type", registry.Unqualified(pinger), registry.Unqualified(registry.TypeOf[string]()), false},
		{"qualified vs unqualified", registry.KeyOf(pinger, "a", ""), registry.Unqualified(pinger), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a == tt.b; got != tt.want {
				t.Errorf("(%s == %s): got %v want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestKey_DistinctKeysAreDistinctMapEntries(t *testing.T) {
	pinger := registry.TypeOf[Pinger]()
	m := map[registry.Key]int{
		registry.Unqualified(pinger):     1,
		registry.KeyOf(pinger, "a", ""):  2,
		registry.KeyOf(pinger, "a", "1"): 3,
		registry.KeyOf(pinger, "", "1"):  4,
		registry.KeyOf(pinger, "b", "1"): 5,
	}
	if len(m) != 5 {
		t.Errorf("expected 5 distinct map entries, got %d", len(m))
	}
}

// ── Qualified / String ────────────────────────────────────────────────────────

func TestKey_Qualified(t *testing.T) {
	pinger := registry.TypeOf[Pinger]()

	if registry.Unqualified(pinger).Qualified() {
		t.Error("unqualified key reported Qualified()")
	}
	if !registry.KeyOf(pinger, "a", "").Qualified() {
		t.Error("named key not reported Qualified()")
	}
	if !registry.KeyOf(pinger, "", "2").Qualified() {
		t.Error("versioned key not reported Qualified()")
	}
}

func TestKey_String(t *testing.T) {
	pinger := registry.TypeOf[Pinger]()

	plain := registry.Unqualified(pinger).String()
	if !strings.Contains(plain, "Pinger") {
		t.Errorf("String() = %q, want the contract type name", plain)
	}

	full := registry.KeyOf(pinger, "utc", "2").String()
	if !strings.Contains(full, "name=utc") || !strings.Contains(full, "version=2") {
		t.Errorf("String() = %q, want both qualifiers rendered", full)
	}
}
