package goquery

import "github.com/prometheus/client_golang/prometheus"

// engineMetrics tracks query/batch/row throughput the way a long-running
// embedding service would want to scrape it.
type engineMetrics struct {
	queriesTotal   prometheus.Counter
	queryErrors    prometheus.Counter
	batchesEmitted prometheus.Counter
	rowsEmitted    prometheus.Counter
}

func newEngineMetrics(reg prometheus.Registerer) *engineMetrics {
	m := &engineMetrics{
		queriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "goquery_queries_total",
			Help: "Number of queries executed.",
		}),
		queryErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "goquery_query_errors_total",
			Help: "Number of queries that returned an error.",
		}),
		batchesEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "goquery_batches_emitted_total",
			Help: "Number of record batches emitted by queries.",
		}),
		rowsEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "goquery_rows_emitted_total",
			Help: "Number of rows emitted by queries.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.queriesTotal, m.queryErrors, m.batchesEmitted, m.rowsEmitted)
	}

	return m
}
