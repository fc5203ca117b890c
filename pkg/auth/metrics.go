package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// tokenAcquisitionsTotal tracks token exchange attempts by outcome.
	tokenAcquisitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "igdb_token_acquisitions_total",
			Help: "Total token exchange attempts by outcome",
		},
		[]string{"outcome"}, // "success", "provider_error", "network_error", "malformed_response"
	)
)
