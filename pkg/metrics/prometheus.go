package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the counters of a single module run. Processes are too short
// lived to be scraped, so the registry is dumped to a textfile on exit.
var Registry = prometheus.NewRegistry()

var APIRequests = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "infra_api_requests_total",
		Help: "Number of requests sent to a remote API.",
	},
	[]string{"system", "method", "code"},
)

var ModuleRuns = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "infra_module_runs_total",
		Help: "Number of module runs by outcome.",
	},
	[]string{"module", "outcome"},
)

func init() {
	Registry.MustRegister(APIRequests)
	Registry.MustRegister(ModuleRuns)
}

// IncrementRequest counts one API call. code is 0 when no response was received.
func IncrementRequest(system, method string, code int) {
	APIRequests.WithLabelValues(system, method, strconv.Itoa(code)).Inc()
}

func IncrementRun(module, outcome string) {
	ModuleRuns.WithLabelValues(module, outcome).Inc()
}

// WriteTextfile writes the registry in the node_exporter textfile format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
