package app

import (
	"context"
	"time"

	"github.com/bft-labs/viscactl/internal/domain"
	"github.com/bft-labs/viscactl/internal/ports"
	"github.com/bft-labs/viscactl/pkg/log"
	"github.com/bft-labs/viscactl/pkg/visca"
)

// Dispatcher sends one command over a Sender and reports the outcome.
type Dispatcher struct {
	sink            ports.ReportSink
	logger          log.Logger
	responseTimeout time.Duration
}

// NewDispatcher creates a dispatcher. A nil sink drops reports.
func NewDispatcher(sink ports.ReportSink, logger log.Logger, responseTimeout time.Duration) *Dispatcher {
	return &Dispatcher{
		sink:            sink,
		logger:          logger,
		responseTimeout: responseTimeout,
	}
}

// Dispatch sends cmd, classifies the first reply and passes the report to
// the sink. Cancelled dispatches are not reported.
func (d *Dispatcher) Dispatch(ctx context.Context, sender Sender, cmd visca.Command, index int, source domain.DispatchSource) domain.Report {
	r := domain.NewReport(cmd, index, source)

	data, err := sender.Send(ctx, visca.Encode(cmd), d.responseTimeout)
	if err != nil {
		r.Duration = time.Since(r.SentAt)
		r.Fail(err)
	} else {
		r.Complete(data)
	}

	if ctx.Err() != nil {
		d.logger.Debug("dispatch cancelled",
			log.String("label", r.Label),
			log.Int("index", index),
		)
		return r
	}

	d.log(r)
	if d.sink != nil {
		d.sink.Report(r)
	}
	return r
}

func (d *Dispatcher) log(r domain.Report) {
	fields := []log.Field{
		log.String("label", r.Label),
		log.Int("index", r.Index),
		log.String("source", string(r.Source)),
		log.String("outbound", r.Outbound),
		log.String("reply", r.Reply.String()),
		log.Duration("duration", r.Duration),
	}
	if r.Inbound != "" {
		fields = append(fields, log.String("inbound", r.Inbound))
	}

	switch {
	case r.Failed():
		d.logger.Error("dispatch failed", append(fields, log.Err(r.Err))...)
	case r.Reply.Kind == visca.ReplyError:
		d.logger.Warn("camera rejected command", fields...)
	default:
		d.logger.Info("command sent", fields...)
	}
}
