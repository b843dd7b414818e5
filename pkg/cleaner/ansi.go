package cleaner

import "github.com/acarl005/stripansi"

// ANSICleaner removes ANSI escape sequences and nothing else. It is the
// baseline the terminal log cleaner is compared against.
type ANSICleaner struct{}

// NewANSI creates a new escape-only cleaner.
func NewANSI() *ANSICleaner {
	return &ANSICleaner{}
}

// Clean strips escape sequences from text.
func (c *ANSICleaner) Clean(text string) (string, error) {
	return stripansi.Strip(text), nil
}

// Name returns the cleaner type.
func (c *ANSICleaner) Name() string {
	return "ansi"
}
