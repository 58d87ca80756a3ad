package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registrationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evea_registration_transitions_total",
		Help: "Registration state transitions by action",
	}, []string{"action"})

	registrationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evea_registration_failures_total",
		Help: "Rejected registration operations by action and error kind",
	}, []string{"action", "kind"})

	documentUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evea_document_uploads_total",
		Help: "Document store uploads by result",
	}, []string{"result"})

	documentUploadDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "evea_document_upload_duration_ms",
		Help:    "Latency of single document uploads in milliseconds",
		Buckets: []float64{50, 100, 250, 500, 1000, 2500, 5000, 10000},
	})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evea_login_attempts_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	emailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evea_emails_sent_total",
		Help: "Outbound emails by template and result",
	}, []string{"template", "result"})
)

func Transition(action string) {
	registrationTransitions.WithLabelValues(action).Inc()
}

func Failure(action, kind string) {
	registrationFailures.WithLabelValues(action, kind).Inc()
}

// ObserveUpload records one document store call
func ObserveUpload(started time.Time, err error) {
	documentUploadDurationMs.Observe(float64(time.Since(started).Microseconds()) / 1000.0)
	if err != nil {
		documentUploads.WithLabelValues("error").Inc()
		return
	}
	documentUploads.WithLabelValues("ok").Inc()
}

func Login(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

func Email(template string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	emailsSent.WithLabelValues(template, result).Inc()
}

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
