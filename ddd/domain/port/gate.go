package port

import (
	"context"

	"videogen-service/ddd/domain/vo"
)

// Admission is the result of a concurrency-gate acquisition attempt.
type Admission int

const (
	// AdmissionGranted the attempt may proceed; the caller must Release.
	AdmissionGranted Admission = iota
	// AdmissionSaturated the global processing cap is reached; demote the
	// job back to approved and release the attempt with a short delay.
	AdmissionSaturated
	// AdmissionDuplicate another worker already holds this job's lock.
	AdmissionDuplicate
)

// ConcurrencyGate enforces the system-wide processing cap and the per-job
// execution lock. Counting runs against persisted job records so the gate is
// correct across worker processes.
type ConcurrencyGate interface {
	// TryAcquire admits or rejects one attempt. Preview attempts skip the
	// cap check but still take the per-job lock.
	TryAcquire(ctx context.Context, jobID uint64, kind vo.GeneratorKind, preview bool) (Admission, error)

	// Release drops the per-job lock. Must run on every exit path.
	Release(ctx context.Context, jobID uint64)
}

// LockStore is the minimal key-value contract the gate needs for the
// per-job execution lock.
type LockStore interface {
	// Put stores the key with a TTL, returning false when it already existed.
	Put(ctx context.Context, key string, ttlSeconds int) (bool, error)
	Has(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}
