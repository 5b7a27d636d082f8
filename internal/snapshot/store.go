package snapshot

import "context"

// Store persists snapshots for out-of-process readers. Save replaces the
// whole record atomically; it is called at up to 1 Hz per device while a
// timer runs, so implementations must tolerate high write rates. Load
// returns Default() when no record has been written yet.
type Store interface {
	Save(ctx context.Context, deviceID string, snap Snapshot) error
	Load(ctx context.Context, deviceID string) (Snapshot, error)
}

// Notifier signals render collaborators to re-read the snapshot after a
// write. The signal is fire-and-forget: a failure is logged by the caller
// and never fails the write.
type Notifier interface {
	SnapshotUpdated(ctx context.Context, deviceID string) error
}

// NopNotifier discards refresh signals. Used in tests and when no
// renderer transport is configured.
type NopNotifier struct{}

// SnapshotUpdated implements Notifier.
func (NopNotifier) SnapshotUpdated(context.Context, string) error { return nil }
