package utils

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AggregateUpdateFailures counts aggregate updates that failed after the review write succeeded.
	AggregateUpdateFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dinewise",
			Name:      "aggregate_update_failures_total",
			Help:      "Rating aggregate updates that failed after the primary review write.",
		},
		[]string{"op"},
	)

	// DealStatusTransitions counts deals moved by the status sweep.
	DealStatusTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dinewise",
			Name:      "deal_status_transitions_total",
			Help:      "Deals transitioned by the status sweep, by target status.",
		},
		[]string{"to"},
	)

	// RecommendationsServed counts items returned per recommendation category.
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dinewise",
			Name:      "recommendations_total",
			Help:      "Recommended items served, by category.",
		},
		[]string{"category"},
	)
)
