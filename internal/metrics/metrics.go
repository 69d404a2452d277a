package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts the interesting transitions of the authorization and
// replay flow
type Metrics struct {
	AuthFlowsStarted  prometheus.Counter
	CallbacksAccepted prometheus.Counter
	CallbacksRejected prometheus.Counter
	TokenExchanges    *prometheus.CounterVec
	Invocations       *prometheus.CounterVec
}

// New registers the portal's metrics against reg
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		AuthFlowsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "summarize_auth_flows_started_total",
			Help: "Authorization redirects issued to the identity provider.",
		}),
		CallbacksAccepted: factory.NewCounter(prometheus.CounterOpts{
			Name: "summarize_callbacks_accepted_total",
			Help: "OAuth callbacks that passed state validation.",
		}),
		CallbacksRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "summarize_callbacks_rejected_total",
			Help: "OAuth callbacks rejected for state mismatch, provider error, or missing parameters.",
		}),
		TokenExchanges: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "summarize_token_exchanges_total",
			Help: "Authorization-code exchanges against the token endpoint.",
		}, []string{"result"}),
		Invocations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "summarize_invocations_total",
			Help: "Model-serving invocations.",
		}, []string{"result"}),
	}
}
