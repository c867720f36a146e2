package problems

import (
	"fmt"
	"sort"

	"github.com/adalundhe/nestor/core/nestedsampling"
)

// Builder constructs a Problem value.
type Builder func() (nestedsampling.Problem, error)

var registry = map[string]Builder{
	"eggbox":      Eggbox,
	"two-circles": TwoCircles,
	"gaussian1d":  Gaussian1D,
}

// Names returns the registered problem names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup builds the named problem, or returns an error naming the
// registered set if name is unknown.
func Lookup(name string) (nestedsampling.Problem, error) {
	builder, ok := registry[name]
	if !ok {
		return nestedsampling.Problem{}, fmt.Errorf("unknown problem %q: registered problems are %v", name, Names())
	}
	return builder()
}
