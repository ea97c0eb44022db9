package otel

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	goScope "github.com/MrEthical07/goScope"
	"github.com/MrEthical07/goScope/metrics/export/internaldefs"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

// Source is what the exporter reads on each collection. *goScope.Engine satisfies it.
type Source interface {
	MetricsSnapshot() goScope.MetricsSnapshot
	AuditDropped() uint64
}

// latency pairs one engine histogram with its bucket and count instruments. Bucket
// series are told apart by their "le" attribute.
type latency struct {
	id      goScope.MetricID
	buckets metric.Int64ObservableCounter
	count   metric.Int64ObservableCounter
}

// Exporter publishes engine snapshots through observable instruments on a Meter.
type Exporter struct {
	source   Source
	counters map[goScope.MetricID]metric.Int64ObservableCounter
	latency  []latency
	dropped  metric.Int64ObservableCounter
	bucketLE []metric.ObserveOption
	reg      metric.Registration
}

// New creates the goscope_* instruments on meter and registers a callback that
// snapshots source once per collection. Call Close to unregister.
func New(meter metric.Meter, source Source) (*Exporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &Exporter{
		source:   source,
		counters: make(map[goScope.MetricID]metric.Int64ObservableCounter, len(internaldefs.CounterDefs)),
		bucketLE: make([]metric.ObserveOption, len(internaldefs.BucketLabels)),
	}
	for i, le := range internaldefs.BucketLabels {
		e.bucketLE[i] = metric.WithAttributeSet(attribute.NewSet(attribute.String("le", le)))
	}

	var instruments []metric.Observable
	counter := func(name, help string) (metric.Int64ObservableCounter, error) {
		ins, err := meter.Int64ObservableCounter(name, metric.WithDescription(help))
		if err != nil {
			return nil, fmt.Errorf("otel: instrument %s: %w", name, err)
		}
		instruments = append(instruments, ins)
		return ins, nil
	}

	for _, def := range internaldefs.CounterDefs {
		ins, err := counter(def.Name, def.Help)
		if err != nil {
			return nil, err
		}
		e.counters[def.ID] = ins
	}
	for _, def := range internaldefs.HistogramDefs {
		buckets, err := counter(def.Name+"_bucket", def.Help+" Cumulative count per upper bound.")
		if err != nil {
			return nil, err
		}
		count, err := counter(def.Name+"_count", def.Help+" Sample count.")
		if err != nil {
			return nil, err
		}
		e.latency = append(e.latency, latency{id: def.ID, buckets: buckets, count: count})
	}
	dropped, err := counter(internaldefs.AuditDroppedName, internaldefs.AuditDroppedHelp)
	if err != nil {
		return nil, err
	}
	e.dropped = dropped

	reg, err := meter.RegisterCallback(e.observe, instruments...)
	if err != nil {
		return nil, fmt.Errorf("otel: register callback: %w", err)
	}
	e.reg = reg
	return e, nil
}

func (e *Exporter) observe(_ context.Context, o metric.Observer) error {
	snap := e.source.MetricsSnapshot()
	for id, ins := range e.counters {
		o.ObserveInt64(ins, int64(snap.Counters[id]))
	}
	for _, h := range e.latency {
		cum := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snap.Histograms[h.id]))
		for i, v := range cum {
			o.ObserveInt64(h.buckets, int64(v), e.bucketLE[i])
		}
		o.ObserveInt64(h.count, int64(cum[len(cum)-1]))
	}
	o.ObserveInt64(e.dropped, int64(e.source.AuditDropped()))
	return nil
}

// Close unregisters the callback. The instruments stay on the Meter and report nothing
// afterwards.
func (e *Exporter) Close() error {
	if e == nil || e.reg == nil {
		return nil
	}
	return e.reg.Unregister()
}
