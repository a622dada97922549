package server

import (
	"os"

	"github.com/stvp/rollbar"
)

// SuppressErrorReporting is a global flag to prevent the service from
// sending unhandled errors to the external crash reporting service
var SuppressErrorReporting bool

// ErrorReporter receives unexpected errors that were already answered to
// the client, so they can be triaged out of band
type ErrorReporter interface {
	ReportError(err error)
}

type rollbarReporter struct{}

// NewRollbarReporter reads the reporting token from ROLLBAR_TOKEN and the
// deployment environment from MACHSHOP_ENV.  With no token set the
// reporter is a no-op.
func NewRollbarReporter() ErrorReporter {
	switch env := os.Getenv("MACHSHOP_ENV"); env {
	case "":
		rollbar.Environment = "production"
	default:
		rollbar.Environment = env
	}
	rollbar.Token = os.Getenv("ROLLBAR_TOKEN")
	return rollbarReporter{}
}

func (rollbarReporter) ReportError(err error) {
	if !SuppressErrorReporting && rollbar.Token != "" {
		rollbar.Error(rollbar.ERR, err)
	}
}

type nopReporter struct{}

// NewNopReporter discards all reports; used in tests
func NewNopReporter() ErrorReporter { return nopReporter{} }

func (nopReporter) ReportError(error) {}
