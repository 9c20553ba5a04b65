package round

import (
	"math/rand/v2"
)

// DefaultPrompts is the fixed prompt set rounds draw from.
var DefaultPrompts = []string{
	"The cat is sleeping on the warm sunny window",
	"I drink cold water after running in the park",
	"She reads a funny book while eating cake with friends",
	"We watch stars at night and talk about our happy dreams",
}

// Chooser picks a prompt uniformly at random from a fixed set.
type Chooser struct {
	prompts []string
	rng     *rand.Rand
}

// ChooserOption configures a Chooser.
type ChooserOption func(*Chooser)

// WithPrompts replaces the prompt set. Empty sets are ignored.
func WithPrompts(prompts []string) ChooserOption {
	return func(c *Chooser) {
		if len(prompts) > 0 {
			c.prompts = append([]string(nil), prompts...)
		}
	}
}

// WithSeed makes the choice sequence reproducible.
func WithSeed(seed uint64) ChooserOption {
	return func(c *Chooser) {
		c.rng = rand.New(rand.NewPCG(seed, seed)) //nolint:gosec // prompt choice is not security sensitive
	}
}

// NewChooser creates a Chooser over DefaultPrompts unless overridden.
func NewChooser(opts ...ChooserOption) *Chooser {
	c := &Chooser{
		prompts: DefaultPrompts,
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())), //nolint:gosec // prompt choice is not security sensitive
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Next returns a prompt. Callers on the session worker only; not safe for concurrent use.
func (c *Chooser) Next() string {
	return c.prompts[c.rng.IntN(len(c.prompts))]
}

// Prompts returns the configured prompt set.
func (c *Chooser) Prompts() []string {
	return append([]string(nil), c.prompts...)
}
