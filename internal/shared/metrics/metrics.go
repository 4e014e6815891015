package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	documentsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lendnova_documents_ingested_total",
			Help: "Documents ingested by declared type and validation outcome",
		},
		[]string{"type", "outcome"},
	)

	extractionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lendnova_extraction_failures_total",
			Help: "Text extraction failures by file kind",
		},
		[]string{"kind"},
	)

	assessmentRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lendnova_assessment_runs_total",
			Help: "Assessment orchestrator runs by outcome",
		},
		[]string{"outcome"},
	)

	assessmentDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lendnova_assessment_duration_seconds",
			Help:    "Time spent in one assessment run, lock wait included",
			Buckets: prometheus.DefBuckets,
		},
	)

	fraudScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lendnova_fraud_score",
			Help:    "Distribution of produced fraud scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	creditScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lendnova_credit_score",
			Help:    "Distribution of produced credit scores",
			Buckets: prometheus.LinearBuckets(300, 50, 13),
		},
	)

	queueMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lendnova_queue_messages_total",
			Help: "Assessment queue messages by result",
		},
		[]string{"result"},
	)
)

// Assessment run outcomes.
const (
	OutcomeProduced     = "produced"
	OutcomeInsufficient = "insufficient_documents"
	OutcomeFailed       = "failed"
)

func IncDocumentIngested(docType string, valid bool) {
	outcome := "invalid"
	if valid {
		outcome = "valid"
	}
	documentsIngested.WithLabelValues(docType, outcome).Inc()
}

func IncExtractionFailure(kind string) {
	extractionFailures.WithLabelValues(kind).Inc()
}

func IncAssessmentRun(outcome string) {
	assessmentRuns.WithLabelValues(outcome).Inc()
}

func ObserveAssessmentDuration(d time.Duration) {
	assessmentDuration.Observe(d.Seconds())
}

func ObserveScores(fraud, credit int) {
	fraudScores.Observe(float64(fraud))
	creditScores.Observe(float64(credit))
}

func IncQueueMessage(result string) {
	queueMessages.WithLabelValues(result).Inc()
}

// Handler exposes the default registry in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
