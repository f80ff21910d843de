// Package driver orchestrates one compilation: load, use resolution,
// name resolution, sema, MIR lowering and validation, run in fixed
// order, with per-phase logrus tracing for -Debug/-Time.
package driver

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nwmarino/meddle/internal/mir"
	"github.com/nwmarino/meddle/internal/resolve"
	"github.com/nwmarino/meddle/internal/sema"
	"github.com/nwmarino/meddle/internal/source"
	"github.com/nwmarino/meddle/internal/unit"
)

// Options mirrors the CLI options.
type Options struct {
	NamedMIR bool
	Debug    bool
	Time     bool
}

// Result is the successful output of one Run: the lowered segment, its
// printable listing, and the FileSet its diagnostics are resolved
// against (for a caller that wants to re-render a returned error with
// internal/diagfmt).
type Result struct {
	Files   *source.FileSet
	Manager *unit.Manager
	Segment *mir.Segment
	MIR     string
}

// Run compiles paths end to end, fatal on the first error any phase
// reports: a name-resolution failure never reaches sema.
func Run(paths []string, opts Options) (*Result, error) {
	log := newLogger(opts.Debug)
	fs := source.NewFileSet()
	res := &Result{Files: fs}

	mgr, err := phase(log, opts, "load", "", func() (*unit.Manager, error) {
		return unit.LoadAll(fs, paths)
	})
	if err != nil {
		return res, err
	}
	res.Manager = mgr

	if _, err := phase(log, opts, "use-resolution", "", func() (struct{}, error) {
		return struct{}{}, unit.ResolveUses(mgr)
	}); err != nil {
		return res, err
	}

	if _, err := phase(log, opts, "name-resolution", "", func() (struct{}, error) {
		return struct{}{}, resolve.Run(mgr)
	}); err != nil {
		return res, err
	}

	if _, err := phase(log, opts, "sema", "", func() (struct{}, error) {
		return struct{}{}, sema.Run(mgr)
	}); err != nil {
		return res, err
	}

	if _, err := phase(log, opts, "sanitate", "", func() (struct{}, error) {
		for _, tu := range mgr.Units() {
			if err := tu.AST.Types.Sanitate(); err != nil {
				return struct{}{}, fmt.Errorf("%s: %w", tu.Path, err)
			}
		}
		return struct{}{}, nil
	}); err != nil {
		return res, err
	}

	seg, err := phase(log, opts, "mir-lowering", "", func() (*mir.Segment, error) {
		return mir.Lower(mgr, opts.NamedMIR)
	})
	if err != nil {
		return res, err
	}
	res.Segment = seg

	if _, err := phase(log, opts, "mir-validation", "", func() (struct{}, error) {
		return struct{}{}, mir.Validate(seg)
	}); err != nil {
		return res, err
	}

	res.MIR = mir.Print(seg)
	return res, nil
}

func newLogger(debug bool) *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.InfoLevel)
	if debug {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// phase runs fn, logging its start at Debug and, when Time is set, its
// wall-clock duration at Info — the logrus.Fields{"phase":..., "unit":...}
// shape names.
func phase[T any](log *logrus.Logger, opts Options, name, unitPath string, fn func() (T, error)) (T, error) {
	fields := logrus.Fields{"phase": name}
	if unitPath != "" {
		fields["unit"] = unitPath
	}
	log.WithFields(fields).Debug("phase started")

	start := time.Now()
	result, err := fn()
	elapsed := time.Since(start)

	if err != nil {
		log.WithFields(fields).WithError(err).Debug("phase failed")
		return result, err
	}
	if opts.Time {
		log.WithFields(fields).WithField("elapsed_ms", float64(elapsed.Microseconds())/1000.0).Info("phase completed")
	} else {
		log.WithFields(fields).Debug("phase completed")
	}
	return result, err
}
