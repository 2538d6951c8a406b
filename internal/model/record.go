package model

import "time"

// FetchStatus describes the outcome of a single source fetch.
type FetchStatus string

const (
	FetchOK      FetchStatus = "ok"
	FetchPartial FetchStatus = "partial"
	FetchFailed  FetchStatus = "failed"
)

// RawRecord is the immutable result of one Source Adapter fetch. The payload
// is an opaque field→value mapping in the source's own vocabulary; the
// normalizer translates it to canonical fields.
type RawRecord struct {
	Source    string         `json:"source"`
	Status    FetchStatus    `json:"status"`
	FetchedAt time.Time      `json:"fetched_at"`
	Payload   map[string]any `json:"payload,omitempty"`
	Error     string         `json:"error,omitempty"`
	LatencyMS int64          `json:"latency_ms"`
}

// Usable reports whether the record carries data the normalizer can consume.
func (r RawRecord) Usable() bool {
	return r.Status != FetchFailed && len(r.Payload) > 0
}

// FailedRecord builds a status=failed RawRecord for a fetch error. Adapters
// return these instead of propagating errors so the pipeline can continue
// with partial data.
func FailedRecord(source string, start time.Time, err error) RawRecord {
	rec := RawRecord{
		Source:    source,
		Status:    FetchFailed,
		FetchedAt: time.Now().UTC(),
		LatencyMS: time.Since(start).Milliseconds(),
	}
	if err != nil {
		rec.Error = err.Error()
	}
	return rec
}
