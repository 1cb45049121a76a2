package ctu

import (
	"time"

	"github.com/sirupsen/logrus"
)

// StepObserver is called after every successful Step, the same
// closure-returning-a-callback shape run.go's DomainManipulator uses
// for InMAP's per-iteration log line.
type StepObserver func(g *Grid, step int, t, dt float64) error

// LogStep returns a StepObserver that reports wall-clock progress and
// the per-rank divergence-free diagnostic through log, grounded on
// run.go's Log(w io.Writer): InMAP prints iteration/walltime/Δwalltime
// with fmt.Fprintf, logrus here being the teacher's own stack choice
// for structured fields (cmd/inmap uses logrus elsewhere in the repo).
// divergenceEvery <= 0 disables the DivergenceB diagnostic (spec.md
// §7: it is informational, never a step failure).
func LogStep(log *logrus.Logger, divergenceEvery int) StepObserver {
	start := time.Now()
	last := time.Now()
	return func(g *Grid, step int, t, dt float64) error {
		now := time.Now()
		entry := log.WithFields(logrus.Fields{
			"step":     step,
			"t":        t,
			"dt":       dt,
			"walltime": now.Sub(start).Seconds(),
			"delta":    now.Sub(last).Seconds(),
		})
		if divergenceEvery > 0 && step%divergenceEvery == 0 {
			entry = entry.WithField("max_div_b", g.DivergenceB())
		}
		entry.Info("step complete")
		last = now
		return nil
	}
}

// NewLogger builds the module's default logrus.Logger: text formatter,
// full timestamps, debug level when verbose (the run configuration's
// Verbose setting) is true, info otherwise. Mirrors
// inmaputil's logging setup, which also hands its CLI a *logrus.Logger
// constructed once at startup rather than relying on the package-level
// default logger.
func NewLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	if verbose {
		log.Level = logrus.DebugLevel
	} else {
		log.Level = logrus.InfoLevel
	}
	return log
}
