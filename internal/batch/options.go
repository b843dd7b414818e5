package batch

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultExtension is the suffix of files picked up from a directory.
	DefaultExtension = ".log"

	// BackupSuffix is appended to a log's path to name its backup.
	BackupSuffix = ".backup"
)

// Options controls how cleaned files are persisted.
// Backup and OutputDir are independent: with an output directory the source
// is never touched, so no backup is written.
type Options struct {
	// Backup writes <path>.backup with the original content before the
	// file is overwritten in place.
	Backup bool `json:"backup" mapstructure:"backup"`

	// OutputDir, when set, receives the cleaned files under their original
	// base names instead of overwriting the sources.
	OutputDir string `json:"output_dir" mapstructure:"output_dir"`

	// Concurrency is the number of files processed at once.
	Concurrency int `json:"concurrency" mapstructure:"concurrency" validate:"min=1,max=1024"`

	// DryRun cleans and reports without writing anything.
	DryRun bool `json:"dry_run" mapstructure:"dry_run"`

	// MaxSize skips files larger than this many bytes. Zero disables the
	// limit.
	MaxSize int64 `json:"max_size" mapstructure:"max_size" validate:"gte=0"`

	// Extension selects which files in a directory are processed.
	Extension string `json:"extension" mapstructure:"extension" validate:"required,startswith=."`
}

// DefaultOptions returns backups on, one worker per CPU and the .log
// extension.
func DefaultOptions() Options {
	return Options{
		Backup:      true,
		Concurrency: runtime.NumCPU(),
		Extension:   DefaultExtension,
	}
}

var validate = validator.New()

// Validate checks the options and returns one error per invalid field.
func (o Options) Validate() error {
	err := validate.Struct(o)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	errs := make([]error, 0, len(verrs))
	for _, e := range verrs {
		errs = append(errs, fmt.Errorf("%s %s", e.Field(), formatValidationError(e)))
	}
	return errors.Join(errs...)
}

// formatValidationError creates a human-readable error message.
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", e.Param())
	case "startswith":
		return fmt.Sprintf("must start with %q", e.Param())
	default:
		return fmt.Sprintf("failed validation '%s'", e.Tag())
	}
}
