// Package report renders placement state into CSV and JSON artifacts and
// stores them in a blob store under a per-run key prefix.
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"placementhub/internal/blob"
	"placementhub/internal/core"
)

const (
	contentTypeCSV  = "text/csv"
	contentTypeJSON = "application/json"

	latestName   = "latest.json"
	manifestName = "manifest.json"
	runIDLayout  = "20060102T150405Z"

	defaultPrefix     = "reports"
	defaultPresignTTL = 24 * time.Hour
	metadataRunID     = "run-id"
	metadataRows      = "rows"
	metadataGenerator = "generator"
	generatorName     = "placementhub"
)

// Source is the read surface the exporter needs; *core.Service satisfies it.
type Source interface {
	Snapshot(ctx context.Context) (core.Snapshot, error)
	CollegeDashboard(ctx context.Context) (core.CollegeStats, error)
}

// Artifact describes one stored report file.
type Artifact struct {
	Name        string `json:"name"`
	Key         string `json:"key"`
	ContentType string `json:"content_type"`
	SizeBytes   int64  `json:"size_bytes"`
	ETag        string `json:"etag,omitempty"`
	Rows        int    `json:"rows,omitempty"`
	URL         string `json:"url,omitempty"`
}

// Manifest lists the artifacts written by one export run.
type Manifest struct {
	RunID       string     `json:"run_id"`
	GeneratedAt time.Time  `json:"generated_at"`
	Driver      string     `json:"driver"`
	Artifacts   []Artifact `json:"artifacts"`
}

// Exporter writes report runs into a blob store.
type Exporter struct {
	store      blob.Store
	prefix     string
	now        func() time.Time
	logger     core.Logger
	presignTTL time.Duration
}

// Option customises an Exporter.
type Option func(*Exporter)

// WithPrefix sets the key prefix all runs are written under.
func WithPrefix(prefix string) Option {
	return func(e *Exporter) {
		if p := strings.Trim(prefix, "/"); p != "" {
			e.prefix = p
		}
	}
}

// WithClock overrides the time source used for run ids.
func WithClock(now func() time.Time) Option {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger core.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithPresignTTL sets the lifetime of download URLs for presigning stores.
func WithPresignTTL(ttl time.Duration) Option {
	return func(e *Exporter) {
		if ttl > 0 {
			e.presignTTL = ttl
		}
	}
}

// NewExporter constructs an exporter over store.
func NewExporter(store blob.Store, opts ...Option) *Exporter {
	e := &Exporter{
		store:      store,
		prefix:     defaultPrefix,
		now:        time.Now,
		logger:     nopLogger{},
		presignTTL: defaultPresignTTL,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type rendered struct {
	name        string
	contentType string
	rows        int
	payload     []byte
}

// Export renders the current state and stores every artifact plus a run
// manifest, then repoints the latest pointer at the new manifest.
func (e *Exporter) Export(ctx context.Context, src Source) (Manifest, error) {
	snap, err := src.Snapshot(ctx)
	if err != nil {
		return Manifest{}, fmt.Errorf("snapshot: %w", err)
	}
	stats, err := src.CollegeDashboard(ctx)
	if err != nil {
		return Manifest{}, fmt.Errorf("college dashboard: %w", err)
	}

	generatedAt := e.now().UTC()
	manifest := Manifest{
		RunID:       generatedAt.Format(runIDLayout),
		GeneratedAt: generatedAt,
		Driver:      string(e.store.Driver()),
	}

	files, err := renderAll(snap, stats)
	if err != nil {
		return Manifest{}, err
	}
	var written []string
	for _, file := range files {
		artifact, err := e.put(ctx, manifest.RunID, file)
		if err != nil {
			e.discard(ctx, written)
			return Manifest{}, err
		}
		written = append(written, artifact.Key)
		manifest.Artifacts = append(manifest.Artifacts, artifact)
	}

	raw, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		e.discard(ctx, written)
		return Manifest{}, fmt.Errorf("encode manifest: %w", err)
	}
	manifestKey := e.runKey(manifest.RunID, manifestName)
	if _, err := e.store.Put(ctx, manifestKey, bytes.NewReader(raw), blob.PutOptions{
		ContentType: contentTypeJSON,
		Metadata:    map[string]string{metadataRunID: manifest.RunID, metadataGenerator: generatorName},
	}); err != nil {
		e.discard(ctx, written)
		return Manifest{}, fmt.Errorf("store %s: %w", manifestKey, err)
	}
	if _, err := e.store.Put(ctx, e.latestKey(), bytes.NewReader(raw), blob.PutOptions{
		ContentType: contentTypeJSON,
		Metadata:    map[string]string{metadataRunID: manifest.RunID},
		Overwrite:   true,
	}); err != nil {
		return Manifest{}, fmt.Errorf("store %s: %w", e.latestKey(), err)
	}
	e.logger.Info("report exported", "run_id", manifest.RunID, "artifacts", len(manifest.Artifacts), "driver", manifest.Driver)
	return manifest, nil
}

// Latest reads the manifest of the most recent run.
func (e *Exporter) Latest(ctx context.Context) (Manifest, error) {
	_, raw, err := blob.ReadAll(ctx, e.store, e.latestKey())
	if err != nil {
		return Manifest{}, err
	}
	var manifest Manifest
	if err := json.Unmarshal(raw, &manifest); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	return manifest, nil
}

// Runs lists the manifests stored under the prefix, oldest first.
func (e *Exporter) Runs(ctx context.Context) ([]string, error) {
	infos, err := e.store.List(ctx, e.prefix+"/")
	if err != nil {
		return nil, err
	}
	var runs []string
	for _, info := range infos {
		dir, file := path.Split(info.Key)
		if file != manifestName {
			continue
		}
		runs = append(runs, path.Base(strings.TrimSuffix(dir, "/")))
	}
	return runs, nil
}

func (e *Exporter) put(ctx context.Context, runID string, file rendered) (Artifact, error) {
	key := e.runKey(runID, file.name)
	info, err := e.store.Put(ctx, key, bytes.NewReader(file.payload), blob.PutOptions{
		ContentType: file.contentType,
		Metadata: map[string]string{
			metadataRunID: runID,
			metadataRows:  strconv.Itoa(file.rows),
		},
	})
	if err != nil {
		return Artifact{}, fmt.Errorf("store %s: %w", key, err)
	}
	artifact := Artifact{
		Name:        file.name,
		Key:         key,
		ContentType: file.contentType,
		SizeBytes:   info.Size,
		ETag:        info.ETag,
		Rows:        file.rows,
	}
	if presigner, ok := e.store.(blob.Presigner); ok {
		url, err := presigner.PresignGet(ctx, key, e.presignTTL)
		if err != nil {
			e.logger.Warn("presign failed", "key", key, "error", err)
		} else {
			artifact.URL = url
		}
	}
	e.logger.Debug("report artifact stored", "key", key, "size_bytes", artifact.SizeBytes)
	return artifact, nil
}

// discard removes artifacts of a run that failed before its manifest was
// stored. Cleanup errors are logged and the original failure is returned.
func (e *Exporter) discard(ctx context.Context, keys []string) {
	for _, key := range keys {
		if _, err := e.store.Delete(ctx, key); err != nil {
			e.logger.Warn("discard partial artifact failed", "key", key, "error", err)
		}
	}
}

func (e *Exporter) runKey(runID, name string) string { return path.Join(e.prefix, runID, name) }

func (e *Exporter) latestKey() string { return path.Join(e.prefix, latestName) }

func renderAll(snap core.Snapshot, stats core.CollegeStats) ([]rendered, error) {
	students, err := studentsCSV(snap)
	if err != nil {
		return nil, err
	}
	applications, err := applicationsCSV(snap)
	if err != nil {
		return nil, err
	}
	dashboard, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode dashboard: %w", err)
	}
	return []rendered{
		{name: "students.csv", contentType: contentTypeCSV, rows: len(snap.Students), payload: students},
		{name: "applications.csv", contentType: contentTypeCSV, rows: len(snap.Applications), payload: applications},
		{name: "dashboard.json", contentType: contentTypeJSON, payload: dashboard},
	}, nil
}

func studentsCSV(snap core.Snapshot) ([]byte, error) {
	rows := [][]string{{"id", "name", "email", "department", "year", "gpa", "status", "employer", "skills"}}
	for _, st := range snap.Students {
		employer := ""
		if st.Employer != nil {
			employer = *st.Employer
		}
		rows = append(rows, []string{
			st.ID, st.Name, st.Email, st.Department, st.Year,
			strconv.FormatFloat(st.GPA, 'f', -1, 64),
			string(st.Status), employer, strings.Join(st.Skills, ";"),
		})
	}
	return encodeCSV("students", rows)
}

func applicationsCSV(snap core.Snapshot) ([]byte, error) {
	rows := [][]string{{"id", "internship_id", "job_title", "student_id", "student_name", "student_gpa", "status", "applied_date"}}
	for _, app := range snap.Applications {
		rows = append(rows, []string{
			app.ID, app.InternshipID, app.JobTitle, app.StudentID, app.StudentName,
			strconv.FormatFloat(app.StudentGPA, 'f', -1, 64),
			string(app.Status), app.AppliedDate,
		})
	}
	return encodeCSV("applications", rows)
}

func encodeCSV(name string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("encode %s csv: %w", name, err)
	}
	return buf.Bytes(), nil
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
