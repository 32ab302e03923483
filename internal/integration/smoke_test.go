package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"placementhub/internal/blob"
	"placementhub/internal/config"
	"placementhub/internal/core"
	"placementhub/internal/infra/persistence/memory"
	"placementhub/internal/report"
	"placementhub/internal/seed"
	"placementhub/pkg/domain"
)

// TestIntegrationSmoke runs a student apply followed by a report export for
// every seed source and in-process blob driver pairing.
func TestIntegrationSmoke(t *testing.T) {
	ctx := context.Background()

	seeds := []struct {
		name string
		cfg  func(t *testing.T) config.SeedConfig
	}{
		{"builtin", func(*testing.T) config.SeedConfig { return config.SeedConfig{Driver: config.SeedBuiltin} }},
		{"json-file", func(t *testing.T) config.SeedConfig {
			return config.SeedConfig{Driver: config.SeedFile, Path: writeJSONSeed(t)}
		}},
		{"sqlite", func(t *testing.T) config.SeedConfig {
			return config.SeedConfig{Driver: config.SeedSQLite, SQLitePath: writeSQLiteSeed(t)}
		}},
	}
	blobs := []struct {
		name string
		cfg  func(t *testing.T) config.BlobConfig
	}{
		{"memory-blob", func(*testing.T) config.BlobConfig { return config.BlobConfig{Driver: config.BlobMemory} }},
		{"filesystem-blob", func(t *testing.T) config.BlobConfig {
			return config.BlobConfig{Driver: config.BlobFS, FSRoot: t.TempDir()}
		}},
	}

	for _, sv := range seeds {
		for _, bv := range blobs {
			t.Run(sv.name+"/"+bv.name, func(t *testing.T) {
				src, err := seed.Open(sv.cfg(t))
				if err != nil {
					t.Fatalf("open seed: %v", err)
				}
				snap, err := src.Load(ctx)
				if err != nil {
					t.Fatalf("load seed: %v", err)
				}
				store := memory.NewStore(core.NewDefaultRulesEngine())
				store.ImportState(snap)
				svc := core.NewService(store)

				if _, out, err := svc.Login(ctx, domain.RoleStudent, "Arjun Singh"); err != nil || !out.Applied {
					t.Fatalf("login: %+v %v", out, err)
				}
				app, out, err := svc.ApplyForInternship(ctx, "2")
				if err != nil || !out.Applied {
					t.Fatalf("apply: %+v %v", out, err)
				}

				bs, err := blob.Open(ctx, bv.cfg(t))
				if err != nil {
					t.Fatalf("open blob: %v", err)
				}
				exp := report.NewExporter(bs, report.WithClock(func() time.Time {
					return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
				}))
				if _, err := exp.Export(ctx, svc); err != nil {
					t.Fatalf("export: %v", err)
				}
				latest, err := exp.Latest(ctx)
				if err != nil {
					t.Fatalf("latest: %v", err)
				}
				if latest.Driver != string(bs.Driver()) || len(latest.Artifacts) != 3 {
					t.Fatalf("unexpected manifest %+v", latest)
				}
				_, raw, err := blob.ReadAll(ctx, bs, latest.Artifacts[1].Key)
				if err != nil {
					t.Fatalf("read applications: %v", err)
				}
				if !strings.Contains(string(raw), app.ID+",2,Data Science Intern,s1,Arjun Singh") {
					t.Fatalf("new application missing from export:\n%s", raw)
				}
			})
		}
	}
}

func writeJSONSeed(t *testing.T) string {
	t.Helper()
	raw, err := json.Marshal(seed.DemoSnapshot())
	if err != nil {
		t.Fatalf("marshal seed: %v", err)
	}
	path := filepath.Join(t.TempDir(), "seed.json")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	return path
}

func writeSQLiteSeed(t *testing.T) string {
	t.Helper()
	snap := seed.DemoSnapshot()
	path := filepath.Join(t.TempDir(), "seed.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer func() { _ = db.Close() }()
	if _, err := db.Exec(`CREATE TABLE seed (bucket TEXT PRIMARY KEY, payload BLOB NOT NULL)`); err != nil {
		t.Fatalf("create table: %v", err)
	}
	buckets := map[string]any{
		seed.BucketStudents:       snap.Students,
		seed.BucketInternships:    snap.Internships,
		seed.BucketApplications:   snap.Applications,
		seed.BucketLogbookEntries: snap.LogbookEntries,
		seed.BucketNotifications:  snap.Notifications,
	}
	for bucket, payload := range buckets {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal %s: %v", bucket, err)
		}
		if _, err := db.Exec(`INSERT INTO seed(bucket, payload) VALUES(?, ?)`, bucket, raw); err != nil {
			t.Fatalf("insert %s: %v", bucket, err)
		}
	}
	return path
}
