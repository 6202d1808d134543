package event

import "github.com/prometheus/client_golang/prometheus"

// malformedEvents counts ABCI events that matched one of the
// subscribed queries but could not be decoded into an IbcEvent (spec
// §9 Open Question decision in DESIGN.md: malformed events are
// dropped and counted rather than aborting the subscription).
var malformedEvents = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "mosaicxc",
		Subsystem: "event",
		Name:      "malformed_total",
		Help:      "ABCI events that matched a subscription query but failed to decode into an IbcEvent.",
	},
	[]string{"chain_id", "query"},
)

func init() {
	prometheus.MustRegister(malformedEvents)
}
