package crashreport

import (
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Reporter accepts crash notifications from a runtime's workers
// (wired in as their WithCrashHook) and files them into a Store.
type Reporter struct {
	store Store
}

// NewReporter builds a Reporter backed by store.
func NewReporter(store Store) *Reporter {
	return &Reporter{store: store}
}

// Report records a crashed service. Its signature differs from an
// actor.WithCrashHook callback; runtime.New wraps it in a closure that
// decodes the worker id from the service id.
func (r *Reporter) Report(workerID uint8, serviceID uint32, serviceName, reason string) {
	report := &Report{
		ID:          uuid.NewString(),
		Worker:      workerID,
		ServiceID:   serviceID,
		ServiceName: serviceName,
		Reason:      reason,
		Timestamp:   time.Now(),
	}

	if err := r.store.StoreReport(report); err != nil {
		log.WithError(err).Warn("crashreport: failed to persist report")
		return
	}

	log.WithFields(log.Fields{
		"worker":       workerID,
		"serviceid":    serviceID,
		"service_name": serviceName,
		"reason":       reason,
	}).Warn("service crashed")
}

// Reports returns every retained crash report.
func (r *Reporter) Reports() ([]*Report, error) {
	return r.store.ListReports()
}

// Close closes the underlying store.
func (r *Reporter) Close() error {
	return r.store.Close()
}
