// Package metrics counts what a bookclubs run did using a private prometheus
// registry, optionally written out in the node-exporter textfile format.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bookclubs"

// Drop reasons
const (
	DropBlank              = "blank"
	DropMissingTitleOrLink = "missing_title_or_link"
	DropDuplicateLink      = "duplicate_link"
)

// Unresolved facets
const (
	FacetDate    = "date"
	FacetTime    = "time"
	FacetVenue   = "venue"
	FacetAddress = "address"
	FacetBook    = "book"
)

// Recorder holds the counters of one run. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	registry *prometheus.Registry

	recordsIn     prometheus.Counter
	recordsOut    prometheus.Counter
	dropped       *prometheus.CounterVec
	unresolved    *prometheus.CounterVec
	extractions   *prometheus.CounterVec
	tags          *prometheus.CounterVec
	fetchRequests prometheus.Counter
}

// New creates a Recorder with its own registry
func New() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.recordsIn = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_in_total",
		Help:      "Raw records read by the cleaning pipeline",
	})
	r.recordsOut = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_out_total",
		Help:      "Cleaned records written",
	})
	r.dropped = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_dropped_total",
		Help:      "Records removed during cleaning by reason",
	}, []string{"reason"})
	r.unresolved = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "unresolved_total",
		Help:      "Records whose facet could not be derived",
	}, []string{"facet"})
	r.extractions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "extractions_total",
		Help:      "Book title/author extractions by rule",
	}, []string{"rule"})
	r.tags = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tags_total",
		Help:      "Tags assigned to cleaned records",
	}, []string{"tag"})
	r.fetchRequests = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fetch_requests_total",
		Help:      "Requests sent to the event search API",
	})

	r.registry.MustRegister(
		r.recordsIn, r.recordsOut, r.dropped, r.unresolved,
		r.extractions, r.tags, r.fetchRequests,
	)
	return r
}

// Registry exposes the underlying registry
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// RecordsIn counts raw records entering the pipeline
func (r *Recorder) RecordsIn(n int) {
	if r != nil {
		r.recordsIn.Add(float64(n))
	}
}

// RecordsOut counts records written after cleaning
func (r *Recorder) RecordsOut(n int) {
	if r != nil {
		r.recordsOut.Add(float64(n))
	}
}

// Dropped counts n records removed for reason
func (r *Recorder) Dropped(reason string, n int) {
	if r != nil && n > 0 {
		r.dropped.WithLabelValues(reason).Add(float64(n))
	}
}

// Unresolved counts one record whose facet stayed empty
func (r *Recorder) Unresolved(facet string) {
	if r != nil {
		r.unresolved.WithLabelValues(facet).Inc()
	}
}

// Extraction counts one book match by the rule that found it
func (r *Recorder) Extraction(rule string) {
	if r != nil {
		r.extractions.WithLabelValues(rule).Inc()
	}
}

// Tag counts one assigned tag
func (r *Recorder) Tag(tag string) {
	if r != nil {
		r.tags.WithLabelValues(tag).Inc()
	}
}

// FetchRequest counts one HTTP attempt against the search API
func (r *Recorder) FetchRequest() {
	if r != nil {
		r.fetchRequests.Inc()
	}
}

// WriteTextfile writes every metric to path in the text exposition format.
// The write is atomic.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
