package report

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"placementhub/internal/blob"
	"placementhub/internal/core"
	"placementhub/internal/infra/persistence/memory"
	"placementhub/internal/seed"
)

var runAt = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func seededService(t *testing.T) *core.Service {
	t.Helper()
	store := memory.NewStore(core.NewDefaultRulesEngine())
	store.ImportState(seed.DemoSnapshot())
	return core.NewService(store)
}

func fixedClock(ts time.Time) func() time.Time { return func() time.Time { return ts } }

func TestExportWritesArtifactsAndLatest(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	exp := NewExporter(store, WithPrefix("/placements/"), WithClock(fixedClock(runAt)))

	manifest, err := exp.Export(ctx, seededService(t))
	require.NoError(t, err)

	assert.Equal(t, "20240315T103000Z", manifest.RunID)
	assert.Equal(t, "memory", manifest.Driver)
	require.Len(t, manifest.Artifacts, 3)
	keys := make([]string, 0, len(manifest.Artifacts))
	for _, a := range manifest.Artifacts {
		keys = append(keys, a.Key)
		assert.NotZero(t, a.SizeBytes)
		assert.Empty(t, a.URL)
	}
	assert.Equal(t, []string{
		"placements/20240315T103000Z/students.csv",
		"placements/20240315T103000Z/applications.csv",
		"placements/20240315T103000Z/dashboard.json",
	}, keys)
	assert.Equal(t, 5, manifest.Artifacts[0].Rows)
	assert.Equal(t, 3, manifest.Artifacts[1].Rows)

	latest, err := exp.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, manifest.RunID, latest.RunID)

	info, err := store.Head(ctx, "placements/20240315T103000Z/manifest.json")
	require.NoError(t, err)
	assert.Equal(t, "placementhub", info.Metadata["generator"])
}

func TestStudentsCSVContent(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	exp := NewExporter(store, WithClock(fixedClock(runAt)))
	_, err := exp.Export(ctx, seededService(t))
	require.NoError(t, err)

	info, raw, err := blob.ReadAll(ctx, store, "reports/20240315T103000Z/students.csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", info.ContentType)
	assert.Equal(t, "5", info.Metadata["rows"])

	records, err := csv.NewReader(strings.NewReader(string(raw))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 6)
	assert.Equal(t, []string{"id", "name", "email", "department", "year", "gpa", "status", "employer", "skills"}, records[0])
	assert.Equal(t, "s1", records[1][0])
	assert.Equal(t, "9.2", records[1][5])
	assert.Equal(t, "TechCorp Solutions", records[1][7])
	assert.Equal(t, "React;TypeScript;Node.js", records[1][8])
	assert.Empty(t, records[2][7])
}

func TestDashboardJSONMatchesService(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	svc := seededService(t)
	_, err := NewExporter(store, WithClock(fixedClock(runAt))).Export(ctx, svc)
	require.NoError(t, err)

	_, raw, err := blob.ReadAll(ctx, store, "reports/20240315T103000Z/dashboard.json")
	require.NoError(t, err)
	var got core.CollegeStats
	require.NoError(t, json.Unmarshal(raw, &got))
	want, err := svc.CollegeDashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSecondRunMovesLatestAndSameRunIDConflicts(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	svc := seededService(t)

	_, err := NewExporter(store, WithClock(fixedClock(runAt))).Export(ctx, svc)
	require.NoError(t, err)
	later := NewExporter(store, WithClock(fixedClock(runAt.Add(time.Hour))))
	second, err := later.Export(ctx, svc)
	require.NoError(t, err)

	latest, err := later.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.RunID, latest.RunID)

	runs, err := later.Runs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"20240315T103000Z", "20240315T113000Z"}, runs)

	_, err = later.Export(ctx, svc)
	assert.ErrorIs(t, err, blob.ErrExists)
}

func TestLatestMissing(t *testing.T) {
	_, err := NewExporter(blob.NewMemory()).Latest(context.Background())
	assert.ErrorIs(t, err, blob.ErrNotFound)
}

type presigningStore struct {
	blob.Store
	fail bool
}

func (p presigningStore) PresignGet(_ context.Context, key string, expiry time.Duration) (string, error) {
	if p.fail {
		return "", errors.New("no signer")
	}
	return "https://signed.example/" + key + "?ttl=" + expiry.String(), nil
}

func TestPresignedURLs(t *testing.T) {
	ctx := context.Background()
	exp := NewExporter(presigningStore{Store: blob.NewMemory()}, WithClock(fixedClock(runAt)), WithPresignTTL(time.Hour))
	manifest, err := exp.Export(ctx, seededService(t))
	require.NoError(t, err)
	assert.Equal(t, "https://signed.example/reports/20240315T103000Z/students.csv?ttl=1h0m0s", manifest.Artifacts[0].URL)

	failing := NewExporter(presigningStore{Store: blob.NewMemory(), fail: true}, WithClock(fixedClock(runAt)))
	manifest, err = failing.Export(ctx, seededService(t))
	require.NoError(t, err, "presign failures only drop the url")
	assert.Empty(t, manifest.Artifacts[0].URL)
}

type failingSource struct{ snapErr, statsErr error }

func (f failingSource) Snapshot(context.Context) (core.Snapshot, error) {
	return core.Snapshot{}, f.snapErr
}

func (f failingSource) CollegeDashboard(context.Context) (core.CollegeStats, error) {
	return core.CollegeStats{}, f.statsErr
}

func TestExportSourceErrors(t *testing.T) {
	boom := errors.New("boom")
	exp := NewExporter(blob.NewMemory())
	_, err := exp.Export(context.Background(), failingSource{snapErr: boom})
	assert.ErrorIs(t, err, boom)
	_, err = exp.Export(context.Background(), failingSource{statsErr: boom})
	assert.ErrorIs(t, err, boom)
}

type failingPutStore struct {
	blob.Store
	suffix string
}

func (f failingPutStore) Put(ctx context.Context, key string, r io.Reader, opts blob.PutOptions) (blob.Info, error) {
	if strings.HasSuffix(key, f.suffix) {
		return blob.Info{}, errors.New("disk full")
	}
	return f.Store.Put(ctx, key, r, opts)
}

func TestFailedExportDiscardsPartialArtifacts(t *testing.T) {
	ctx := context.Background()
	for _, suffix := range []string{"dashboard.json", "manifest.json"} {
		t.Run(suffix, func(t *testing.T) {
			mem := blob.NewMemory()
			exp := NewExporter(failingPutStore{Store: mem, suffix: suffix}, WithClock(fixedClock(runAt)))
			_, err := exp.Export(ctx, seededService(t))
			require.Error(t, err)
			assert.Contains(t, err.Error(), suffix)

			left, err := mem.List(ctx, "reports/")
			require.NoError(t, err)
			assert.Empty(t, left)
			runs, err := exp.Runs(ctx)
			require.NoError(t, err)
			assert.Empty(t, runs)
		})
	}
}

func TestRunIDCollisionKeepsEarlierRun(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	exp := NewExporter(store, WithClock(fixedClock(runAt)))
	_, err := exp.Export(ctx, seededService(t))
	require.NoError(t, err)

	_, err = exp.Export(ctx, seededService(t))
	require.ErrorIs(t, err, blob.ErrExists)
	_, _, err = blob.ReadAll(ctx, store, "reports/20240315T103000Z/students.csv")
	assert.NoError(t, err)
	runs, err := exp.Runs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"20240315T103000Z"}, runs)
}
