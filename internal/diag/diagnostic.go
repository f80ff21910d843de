// Package diag defines the single fatal diagnostic every phase reports
// through: no accumulation, no error lists. The first error produced
// anywhere in the pipeline ends the run.
package diag

import (
	"fmt"

	"github.com/nwmarino/meddle/internal/source"
)

// Diagnostic is a located, severity-tagged compiler message. It implements
// error so it can be returned and wrapped like any other Go error.
type Diagnostic struct {
	Severity Severity
	Loc source.Location
	Message string
}

func (d *Diagnostic) Error() string {
	return d.Message
}

// New constructs a Diagnostic at the given severity and location.
func New(sev Severity, loc source.Location, format string, args ...any) *Diagnostic {
	return &Diagnostic{Severity: sev, Loc: loc, Message: fmt.Sprintf(format, args...)}
}

// Errorf constructs a fatal (SevError) Diagnostic.
func Errorf(loc source.Location, format string, args ...any) *Diagnostic {
	return New(SevError, loc, format, args...)
}

// Format renders a Diagnostic as "<file>:<line>:<col>: <severity>: <message>".
func Format(fs *source.FileSet, d *Diagnostic) string {
	return fmt.Sprintf("%s: %s: %s", fs.Format(d.Loc), d.Severity, d.Message)
}
