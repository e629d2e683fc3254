// Package metrics exposes the Prometheus counters and gauges for the
// slot loop and validator, in the same promauto style the teacher
// uses for its signing metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SlotsAttempted counts every slot the leader service attempted to
	// generate a block for.
	SlotsAttempted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "temp_consensus_slots_attempted_total",
		Help: "Total slots the leader service attempted to generate a block for",
	})
	// SlotsSucceeded counts slots that produced and submitted a block.
	SlotsSucceeded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "temp_consensus_slots_succeeded_total",
		Help: "Total slots that successfully produced and submitted a block",
	})
	// SlotsFailed counts slots that failed for any reason and were
	// skipped rather than retried.
	SlotsFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "temp_consensus_slots_failed_total",
		Help: "Total slots that failed and were skipped",
	})
	// LastGeneratedSlot is the last slot timestamp a block was
	// successfully submitted for.
	LastGeneratedSlot = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "temp_consensus_last_generated_slot",
		Help: "UNIX timestamp of the last slot a block was generated for",
	})
	// BlocksAccepted counts blocks the validator accepted.
	BlocksAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "temp_consensus_blocks_accepted_total",
		Help: "Total blocks accepted by the leader-block validator",
	})
	// BlocksRejected counts blocks the validator rejected, labeled by
	// reason.
	BlocksRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "temp_consensus_blocks_rejected_total",
		Help: "Total blocks rejected by the leader-block validator, by reason",
	}, []string{"reason"})
	// AuditQuorumFailures counts block-hash-audit polling rounds that
	// did not reach quorum.
	AuditQuorumFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "temp_consensus_audit_quorum_failures_total",
		Help: "Total block-hash-audit rounds that failed to reach quorum",
	})
)
