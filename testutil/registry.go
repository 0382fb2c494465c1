package testutil

import (
	"math/rand/v2"

	"github.com/skosovsky/textops"
	"github.com/skosovsky/textops/catalog"
)

// NewTestRegistry returns a Registry with panic recovery enabled holding tools.
func NewTestRegistry(tools ...textops.Tool) *textops.Registry {
	reg := textops.NewRegistry(textops.WithRecoverPanics(true))
	for _, t := range tools {
		reg.Register(t)
	}
	return reg
}

// NewCatalogRegistry returns the built-in catalog with a fixed random seed, so
// shuffles and generators are reproducible, plus any extra tools.
func NewCatalogRegistry(seed uint64, extra ...textops.Tool) *textops.Registry {
	reg := catalog.NewRegistry(
		catalog.WithRand(rand.New(rand.NewPCG(seed, seed))),
		catalog.WithRegistryOptions(textops.WithRecoverPanics(true)),
	)
	for _, t := range extra {
		reg.Register(t)
	}
	return reg
}
