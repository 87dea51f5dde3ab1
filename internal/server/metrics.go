package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	DocumentsCreated *prometheus.CounterVec
	DocumentsUpdated *prometheus.CounterVec
	DocumentsDeleted *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DocumentsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobledger",
			Name:      "documents_created_total",
			Help:      "Number of financial documents created, by document type.",
		}, []string{"type"}),
		DocumentsUpdated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobledger",
			Name:      "documents_updated_total",
			Help:      "Number of financial documents updated, by document type.",
		}, []string{"type"}),
		DocumentsDeleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "jobledger",
			Name:      "documents_deleted_total",
			Help:      "Number of financial documents deleted, by document type.",
		}, []string{"type"}),
	}
}
