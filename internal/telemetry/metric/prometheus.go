// Package metric provides Prometheus metrics for kvsh.
package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kvsh"

// Command outcomes used as the "outcome" label.
const (
	OutcomeOK          = "ok"
	OutcomeError       = "error"
	OutcomeUsage       = "usage"
	OutcomeUnsupported = "unsupported"
)

// Registry holds the shell's metrics.
type Registry struct {
	CommandsTotal   *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
}

// NewRegistry creates the metrics and registers them with reg.
// A nil reg leaves the metrics unregistered.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		CommandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands executed by the shell, by verb and outcome.",
		}, []string{"verb", "outcome"}),
		CommandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Round-trip latency of shell commands.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"verb"}),
	}
	if reg != nil {
		reg.MustRegister(r.CommandsTotal, r.CommandDuration)
	}
	return r
}

// ObserveCommand records one executed command. Safe on a nil Registry.
func (r *Registry) ObserveCommand(verb, outcome string, d time.Duration) {
	if r == nil {
		return
	}
	verb = VerbLabel(verb)
	r.CommandsTotal.WithLabelValues(verb, outcome).Inc()
	r.CommandDuration.WithLabelValues(verb).Observe(d.Seconds())
}

// knownVerbs bounds the cardinality of the verb label.
var knownVerbs = map[string]bool{
	"GET": true, "SET": true, "DEL": true, "EXISTS": true, "EXPIRE": true,
	"TTL": true, "TYPE": true, "SCAN": true, "KEYS": true, "PING": true,
	"INFO": true, "DBSIZE": true, "INCR": true, "DECR": true,
	"HGET": true, "HSET": true, "HDEL": true, "HGETALL": true,
	"LPUSH": true, "RPUSH": true, "LPOP": true, "RPOP": true, "LRANGE": true,
	"SADD": true, "SREM": true, "SMEMBERS": true,
	"ZADD": true, "ZREM": true, "ZRANGE": true, "ZSCORE": true,
}

// VerbLabel maps a verb to its label value; unknown verbs become "other".
func VerbLabel(verb string) string {
	if knownVerbs[verb] {
		return verb
	}
	return "other"
}

// Handler returns the HTTP handler exposing the metrics of g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
