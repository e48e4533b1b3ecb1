package log

import (
	"github.com/bft-labs/viscactl/internal/domain"
	"github.com/bft-labs/viscactl/internal/ports"
	"github.com/bft-labs/viscactl/pkg/log"
	"github.com/bft-labs/viscactl/pkg/visca"
)

// ReportSink implements ports.ReportSink by writing one log line per dispatch.
type ReportSink struct {
	logger log.Logger
}

// NewReportSink creates a sink that logs through logger.
func NewReportSink(logger log.Logger) *ReportSink {
	return &ReportSink{logger: logger}
}

// Report logs r. Camera errors log at warn, dispatch failures at error.
func (s *ReportSink) Report(r domain.Report) {
	fields := []log.Field{
		log.String("id", r.ID),
		log.String("label", r.Label),
		log.Int("index", r.Index),
		log.String("source", string(r.Source)),
		log.String("outbound", r.Outbound),
		log.String("inbound", r.Inbound),
		log.String("reply", r.Reply.String()),
		log.Duration("duration", r.Duration),
	}

	switch {
	case r.Failed():
		s.logger.Error("dispatch", append(fields, log.Err(r.Err))...)
	case r.Reply.Kind == visca.ReplyError:
		s.logger.Warn("dispatch", fields...)
	default:
		s.logger.Info("dispatch", fields...)
	}
}

// Fanout delivers each report to every sink in order.
type Fanout []ports.ReportSink

// Report forwards r to each sink.
func (f Fanout) Report(r domain.Report) {
	for _, s := range f {
		s.Report(r)
	}
}
