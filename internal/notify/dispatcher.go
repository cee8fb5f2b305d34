// internal/notify/dispatcher.go
package notify

import (
	"vitalscan/internal/common/errors"
	"vitalscan/internal/common/logger"
	"vitalscan/internal/common/metrics"
)

// Result reports the per-channel outcome of one dispatch.
type Result struct {
	EmailAttempted bool
	EmailErr       error
	PhoneAttempted bool
	PhoneErr       error
}

// AllFailed reports whether every attempted channel failed. A dispatch with
// no usable contact details attempted nothing and did not fail.
func (r Result) AllFailed() bool {
	attempted := 0
	failed := 0
	if r.EmailAttempted {
		attempted++
		if r.EmailErr != nil {
			failed++
		}
	}
	if r.PhoneAttempted {
		attempted++
		if r.PhoneErr != nil {
			failed++
		}
	}
	return attempted > 0 && attempted == failed
}

// Dispatcher fans the report out to both channels. Channels are independent
// and best effort: one failing never stops the other, and no failure is
// terminal for the job.
type Dispatcher struct {
	email  EmailChannel
	phone  MessageChannel
	logger logger.Logger
}

func NewDispatcher(email EmailChannel, phone MessageChannel, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		email:  email,
		phone:  phone,
		logger: log,
	}
}

// Dispatch attempts each channel for which the respondent left contact
// details. Errors are logged, counted and collected, never returned as
// hard failures.
func (d *Dispatcher) Dispatch(msg *ReportMessage) Result {
	var res Result

	if d.email != nil && msg.Email != "" {
		res.EmailAttempted = true
		if err := d.email.SendReport(msg); err != nil {
			res.EmailErr = errors.NewDeliveryError("email", err)
			metrics.DeliveryFailures.WithLabelValues("email").Inc()
			d.logger.WithError(err).Warn("email delivery failed", map[string]interface{}{
				"diagnostic_id": msg.DiagnosticID,
			})
		}
	}

	if d.phone != nil && msg.Phone != "" {
		res.PhoneAttempted = true
		if err := d.phone.SendReport(msg); err != nil {
			res.PhoneErr = errors.NewDeliveryError("whatsapp", err)
			metrics.DeliveryFailures.WithLabelValues("whatsapp").Inc()
			d.logger.WithError(err).Warn("whatsapp delivery failed", map[string]interface{}{
				"diagnostic_id": msg.DiagnosticID,
			})
		}
	}

	return res
}
