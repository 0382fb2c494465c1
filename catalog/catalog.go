// Package catalog is the fixed set of text tools served by textops.
//
// Every tool is a pure function of its text and positional string arguments. Bad
// arguments produce an "Error: ..." string instead of converted text. Tools that
// shuffle or generate draw from an injected random source so tests can seed them.
package catalog

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/skosovsky/textops"
)

// Option configures the catalog.
type Option func(*options)

type options struct {
	rnd     *rand.Rand
	regOpts []textops.RegistryOption
}

// WithRand sets the random source of the shuffle, case and generator tools.
// Defaults to a time-seeded PCG source. Access is serialized by the catalog.
func WithRand(r *rand.Rand) Option {
	return func(o *options) {
		if r != nil {
			o.rnd = r
		}
	}
}

// WithRegistryOptions passes options to the registry built by NewRegistry.
func WithRegistryOptions(opts ...textops.RegistryOption) Option {
	return func(o *options) {
		o.regOpts = append(o.regOpts, opts...)
	}
}

// lockedRand serializes access to a *rand.Rand shared by every random tool.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (l *lockedRand) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.rnd == nil {
		seed := uint64(time.Now().UnixNano())
		o.rnd = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return o
}

// Tools returns every catalog tool.
func Tools(opts ...Option) []textops.Tool {
	o := newOptions(opts)
	rnd := &lockedRand{r: o.rnd}
	var out []textops.Tool
	out = append(out, caseTools()...)
	out = append(out, lineTools()...)
	out = append(out, countTools()...)
	out = append(out, csvTools()...)
	out = append(out, extractTools()...)
	out = append(out, formatTools()...)
	out = append(out, randomTools(rnd)...)
	return out
}

// Register adds every catalog tool to reg.
func Register(reg *textops.Registry, opts ...Option) {
	for _, t := range Tools(opts...) {
		reg.Register(t)
	}
}

// NewRegistry returns a registry holding the whole catalog.
func NewRegistry(opts ...Option) *textops.Registry {
	o := newOptions(opts)
	reg := textops.NewRegistry(o.regOpts...)
	Register(reg, WithRand(o.rnd))
	return reg
}

// intArg parses a bounded integer argument. Empty input yields def.
func intArg(s string, def, lo, hi int) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, def >= lo && def <= hi
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < lo || n > hi {
		return 0, false
	}
	return n, true
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

func unescape(s string) string {
	r := strings.NewReplacer(`\n`, "\n", `\t`, "\t")
	return r.Replace(s)
}
