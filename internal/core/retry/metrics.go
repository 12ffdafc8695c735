package retry

import "github.com/prometheus/client_golang/prometheus"

var (
	attemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "directory_retry_attempts_total", Help: "Operation attempts made by the retry executor"},
		[]string{"op"},
	)
	outcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "directory_retry_outcomes_total", Help: "Final outcome of retried operations"},
		[]string{"op", "outcome"},
	)
)

func init() { prometheus.MustRegister(attemptsTotal, outcomesTotal) }
