//go:build property
// +build property

package gate

import (
	"context"
	"testing"

	"webboot/core/container"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestSelectableFilterProperties checks the composer against the wrapped filter.
func TestSelectableFilterProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	kinds := gen.OneConstOf(container.KindOther, container.KindTLD, container.KindPluggability)
	names := gen.OneConstOf("mylib-1.0.jar", "other.jar", "mylib-sources.jar", "x.zip", "")

	// Property: without an enabled selector the wrapped filter always decides
	properties.Property("delegates without selector", prop.ForAll(
		func(kind container.ScanKind, name string, tld, frag bool, wrapped bool) bool {
			reg := Registry{
				Tld:                  ModeOf(tld),
				WebFragments:         ModeOf(frag),
				TldSelector:          nil,
				WebFragmentsSelector: nil,
			}
			return Compose(reg, fixedFilter(wrapped)).Check(kind, name) == wrapped
		},
		kinds, names, gen.Bool(), gen.Bool(), gen.Bool(),
	))

	// Property: None mode ignores a configured selector
	properties.Property("none mode ignores selector", prop.ForAll(
		func(kind container.ScanKind, name string, wrapped bool) bool {
			reject := func(string) bool { return false }
			reg := Registry{TldSelector: reject, WebFragmentsSelector: reject}
			return Compose(reg, fixedFilter(wrapped)).Check(kind, name) == wrapped
		},
		kinds, names, gen.Bool(),
	))

	// Property: an enabled selector is authoritative for its kind
	properties.Property("selector authoritative", prop.ForAll(
		func(kind container.ScanKind, name string, wrapped bool) bool {
			sel := ContainsSelector("mylib")
			reg := Registry{Tld: ModeDetect, TldSelector: sel, WebFragments: ModeDetect, WebFragmentsSelector: sel}
			got := Compose(reg, fixedFilter(wrapped)).Check(kind, name)
			if kind == container.KindOther {
				return got == wrapped
			}
			return got == sel(name)
		},
		kinds, names, gen.Bool(),
	))

	// Property: composing twice behaves like composing once
	properties.Property("compose idempotent", prop.ForAll(
		func(kind container.ScanKind, name string, wrapped bool) bool {
			reg := Registry{Tld: ModeDetect, TldSelector: ContainsSelector("mylib")}
			once := Compose(reg, fixedFilter(wrapped))
			twice := Compose(reg, once)
			return once.Check(kind, name) == twice.Check(kind, name)
		},
		kinds, names, gen.Bool(),
	))

	properties.TestingRun(t)
}

// TestGateOnceProperties checks that installation runs once for any event sequence.
func TestGateOnceProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("installs exactly once", prop.ForAll(
		func(n int) bool {
			reg := Registry{Tld: ModeDetect, TldSelector: ContainsSelector("mylib")}
			scanner := container.NewScanner(nil)
			c := container.NewContext("/app", scanner)
			g := New(reg, container.NewNativeSteps(nil), nil)

			if err := g.LifecycleEvent(context.Background(), c, container.EventBeforeInit); err != nil {
				return false
			}
			installed := scanner.Filter()
			// Replace the installed filter; a second installation would wrap this one.
			plain := fixedFilter(true)
			scanner.SetFilter(plain)
			for i := 1; i < n; i++ {
				if err := g.LifecycleEvent(context.Background(), c, container.Event(i%9)); err != nil {
					return false
				}
			}
			_, wrapped := installed.(*SelectableFilter)
			_, rewrapped := scanner.Filter().(*SelectableFilter)
			return wrapped && !rewrapped && g.Fired()
		},
		gen.IntRange(1, 50),
	))

	properties.TestingRun(t)
}
