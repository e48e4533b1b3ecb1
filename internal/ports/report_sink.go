package ports

import "github.com/bft-labs/viscactl/internal/domain"

// ReportSink receives dispatch reports. Report is called synchronously from
// the dispatching goroutine and should return quickly.
type ReportSink interface {
	Report(r domain.Report)
}

// ReportSinkFunc adapts a function to ReportSink.
type ReportSinkFunc func(r domain.Report)

// Report calls f(r).
func (f ReportSinkFunc) Report(r domain.Report) { f(r) }
