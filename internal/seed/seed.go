// Package seed provides the initial dataset a placement store starts from.
// Sources are read once at startup and never written back.
package seed

import (
	"context"
	"encoding/json"
	"fmt"

	"placementhub/internal/config"
	"placementhub/internal/infra/persistence/memory"
)

// Source yields a snapshot to import into a fresh store.
type Source interface {
	Name() string
	Load(ctx context.Context) (memory.Snapshot, error)
}

// Open returns the Source selected by cfg.Driver.
func Open(cfg config.SeedConfig) (Source, error) {
	switch cfg.Driver {
	case config.SeedBuiltin, "":
		return Builtin(), nil
	case config.SeedFile:
		return FileSource{Path: cfg.Path}, nil
	case config.SeedSQLite:
		return SQLiteSource{Path: cfg.SQLitePath}, nil
	case config.SeedPostgres:
		return PostgresSource{DSN: cfg.PostgresDSN}, nil
	default:
		return nil, fmt.Errorf("unknown seed driver %q", cfg.Driver)
	}
}

// Bucket names used by table-backed sources. Each row holds one JSON
// document: the session user object or an array for the collections.
const (
	BucketSession        = "session"
	BucketStudents       = "students"
	BucketInternships    = "internships"
	BucketApplications   = "applications"
	BucketLogbookEntries = "logbook_entries"
	BucketNotifications  = "notifications"
)

// Buckets lists every recognised bucket name.
func Buckets() []string {
	return []string{
		BucketSession,
		BucketStudents,
		BucketInternships,
		BucketApplications,
		BucketLogbookEntries,
		BucketNotifications,
	}
}

func bucketTargets(snap *memory.Snapshot) map[string]any {
	return map[string]any{
		BucketSession:        &snap.Session,
		BucketStudents:       &snap.Students,
		BucketInternships:    &snap.Internships,
		BucketApplications:   &snap.Applications,
		BucketLogbookEntries: &snap.LogbookEntries,
		BucketNotifications:  &snap.Notifications,
	}
}

// decodeBucket unmarshals payload into the snapshot field for bucket.
// Unknown buckets are skipped so newer seed tables stay readable.
func decodeBucket(snap *memory.Snapshot, bucket string, payload []byte) error {
	if len(payload) == 0 {
		return nil
	}
	target, ok := bucketTargets(snap)[bucket]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(payload, target); err != nil {
		return fmt.Errorf("decode %s: %w", bucket, err)
	}
	return nil
}
