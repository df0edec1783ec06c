package gate

import (
	"testing"

	"webboot/core/container"

	"github.com/stretchr/testify/assert"
)

func fixedFilter(result bool) container.ArchiveFilter {
	return container.FilterFunc(func(container.ScanKind, string) bool { return result })
}

func TestSelectableFilter_Check(t *testing.T) {
	mylib := ContainsSelector("mylib")

	tests := []struct {
		name     string
		registry Registry
		kind     container.ScanKind
		archive  string
		wrapped  bool
		want     bool
	}{
		{"TldSelectorAccepts", Registry{Tld: ModeDetect, TldSelector: mylib}, container.KindTLD, "mylib-1.0.jar", false, true},
		{"TldSelectorRejects", Registry{Tld: ModeDetect, TldSelector: mylib}, container.KindTLD, "other.jar", true, false},
		{"TldSelectorIgnoredForPluggability", Registry{Tld: ModeDetect, TldSelector: mylib}, container.KindPluggability, "other.jar", true, true},
		{"TldNoneIgnoresSelector", Registry{Tld: ModeNone, TldSelector: mylib}, container.KindTLD, "other.jar", true, true},
		{"TldDetectWithoutSelector", Registry{Tld: ModeDetect}, container.KindTLD, "other.jar", false, false},
		{"FragmentSelectorAccepts", Registry{WebFragments: ModeDetect, WebFragmentsSelector: mylib}, container.KindPluggability, "mylib.jar", false, true},
		{"FragmentSelectorRejects", Registry{WebFragments: ModeDetect, WebFragmentsSelector: mylib}, container.KindPluggability, "x.jar", true, false},
		{"FragmentNoneIgnoresSelector", Registry{WebFragments: ModeNone, WebFragmentsSelector: mylib}, container.KindPluggability, "x.jar", true, true},
		{"OtherKindDelegates", Registry{Tld: ModeDetect, TldSelector: mylib, WebFragments: ModeDetect, WebFragmentsSelector: mylib}, container.KindOther, "x.jar", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := Compose(tt.registry, fixedFilter(tt.wrapped))
			assert.Equal(t, tt.want, f.Check(tt.kind, tt.archive))
		})
	}
}

func TestCompose_Idempotent(t *testing.T) {
	reg := Registry{Tld: ModeDetect, TldSelector: ContainsSelector("mylib")}
	native := container.NewStandardFilter()

	once := Compose(reg, native)
	twice := Compose(reg, once)

	assert.Same(t, once, twice)
	assert.Same(t, native, twice.(*SelectableFilter).Unwrap())
}

func TestGlobSelector(t *testing.T) {
	s := GlobSelector("mylib-*.jar", "[")

	assert.True(t, s("mylib-1.0.jar"))
	assert.True(t, s("/opt/lib/mylib-2.jar"))
	assert.False(t, s("other.jar"))
}

func TestRegistry_Predicates(t *testing.T) {
	assert.False(t, Registry{}.InitializersAvailable())
	assert.True(t, Registry{Annotation: ModeDetect}.InitializersAvailable())
	assert.True(t, Registry{Tld: ModeDetect}.InitializersAvailable())
	assert.False(t, Registry{MetaInfoResource: ModeDetect, WebFragments: ModeDetect}.InitializersAvailable())

	assert.False(t, Registry{TldSelector: ContainsSelector("x")}.SelectorEnabled())
	assert.True(t, Registry{WebFragments: ModeDetect, WebFragmentsSelector: ContainsSelector("x")}.SelectorEnabled())

	assert.Equal(t, "detect", ModeOf(true).String())
	assert.Equal(t, "none", ModeOf(false).String())
}
