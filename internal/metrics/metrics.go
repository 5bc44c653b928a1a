package metrics

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	ginprometheus "github.com/zsais/go-gin-prometheus"
)

const metricsNamespace = "codeit"

// Run outcomes.
const (
	OutcomeOK          = "ok"
	OutcomeNonZeroExit = "nonzero_exit"
	OutcomeUnsupported = "unsupported"
	OutcomeError       = "error"
)

var (
	// 10ms -> 20s
	runBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20}

	runCount = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "runs_total",
		Help:      "Number of run triggers by language and outcome",
	}, []string{"language", "outcome"})

	runDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: metricsNamespace,
		Name:      "run_duration_seconds",
		Help:      "Round trip time of execution service calls",
		Buckets:   runBuckets,
	}, []string{"language", "outcome"})

	activeSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "sessions_active",
		Help:      "Number of open editor sessions",
	})
)

func init() {
	prometheus.MustRegister(runCount, runDuration, activeSessions)
}

// ObserveRun records one run trigger. d is zero when no call was made.
func ObserveRun(language, outcome string, d time.Duration) {
	runCount.WithLabelValues(language, outcome).Inc()
	if d > 0 {
		runDuration.WithLabelValues(language, outcome).Observe(d.Seconds())
	}
}

// SessionOpened and SessionClosed track the active session gauge.
func SessionOpened() { activeSessions.Inc() }

func SessionClosed() { activeSessions.Dec() }

// InitGin attaches request metrics to r.
func InitGin(r *gin.Engine) {
	p := ginprometheus.NewWithConfig(ginprometheus.Config{
		Subsystem:          "gin",
		DisableBodyReading: true,
	})
	p.ReqCntURLLabelMappingFn = func(c *gin.Context) string {
		return c.FullPath()
	}
	r.Use(p.HandlerFunc())
}
