// Package cleaner provides the interface shared by text cleaners and helpers
// for composing them.
// Cleaners take a raw captured buffer and return a tidier version of it.
package cleaner

// Cleaner transforms captured text into a cleaner form.
// The terminal log implementation lives in the termlog subpackage.
type Cleaner interface {
	// Clean transforms the input text into its cleaned form.
	Clean(text string) (string, error)

	// Name returns the cleaner type for logging/debugging.
	Name() string
}
