// Command placement-report seeds a placement store, optionally replays a demo
// session across the three roles, and writes a report run to blob storage.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"placementhub/internal/blob"
	"placementhub/internal/config"
	"placementhub/internal/core"
	"placementhub/internal/infra/persistence/memory"
	"placementhub/internal/report"
	"placementhub/internal/seed"
	"placementhub/internal/telemetry"
	"placementhub/pkg/domain"
)

var (
	exitFunc   = os.Exit
	loadConfig = config.Load
)

func main() {
	exitFunc(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("placement-report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	demo := fs.Bool("demo", true, "replay a demo session before exporting")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig()
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "config: %v\n", err)
		return 1
	}
	logger, err := newLogger(cfg, stderr)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "logger: %v\n", err)
		return 1
	}

	manifest, err := execute(ctx, cfg, logger, *demo)
	if err != nil {
		logger.Error("placement report failed", "error", err)
		return 1
	}
	for _, a := range manifest.Artifacts {
		_, _ = fmt.Fprintf(stdout, "%s\t%d\t%s\n", a.Key, a.SizeBytes, a.URL)
	}
	return 0
}

func newLogger(cfg config.Config, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "text" {
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return slog.New(slog.NewJSONHandler(w, opts)), nil
}

func execute(ctx context.Context, cfg config.Config, logger *slog.Logger, demo bool) (manifest report.Manifest, err error) {
	shutdown, err := telemetry.SetupTracing(ctx, telemetry.TracingConfig{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
	})
	if err != nil {
		return report.Manifest{}, fmt.Errorf("setup tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = errors.Join(err, shutdown(shutdownCtx))
	}()

	src, err := seed.Open(cfg.Seed)
	if err != nil {
		return report.Manifest{}, err
	}
	snap, err := src.Load(ctx)
	if err != nil {
		return report.Manifest{}, fmt.Errorf("load seed %s: %w", src.Name(), err)
	}
	logger.Info("seed loaded", "source", src.Name(), "students", len(snap.Students), "internships", len(snap.Internships))

	engine := core.NewDefaultRulesEngine()
	if cfg.StrictApplicationStatus {
		engine = core.NewStrictRulesEngine()
	}
	store := memory.NewStore(engine)
	store.ImportState(snap)

	tracer, closeTracer, err := newTracer(cfg.Tracing)
	if err != nil {
		return report.Manifest{}, err
	}
	defer func() { err = errors.Join(err, closeTracer()) }()

	registry := prometheus.NewRegistry()
	promRecorder, err := telemetry.NewPrometheusRecorder(registry, cfg.Metrics.Namespace)
	if err != nil {
		return report.Manifest{}, fmt.Errorf("metrics: %w", err)
	}
	expvarRecorder := core.NewExpvarMetricsRecorder(cfg.Metrics.ExpvarName)

	svc := core.NewService(store,
		core.WithLogger(logger),
		core.WithAuditRecorder(core.LoggerAuditRecorder{Logger: logger.With("component", "audit")}),
		core.WithMetricsRecorder(fanoutRecorder{promRecorder, expvarRecorder}),
		core.WithTracer(tracer),
	)

	if demo {
		if err := replayDemo(ctx, svc, logger); err != nil {
			return report.Manifest{}, err
		}
	}

	blobs, err := blob.Open(ctx, cfg.Blob)
	if err != nil {
		return report.Manifest{}, fmt.Errorf("open blob store: %w", err)
	}
	exporter := report.NewExporter(blobs,
		report.WithPrefix(cfg.Blob.ReportPrefix),
		report.WithLogger(logger),
	)
	manifest, err = exporter.Export(ctx, svc)
	if err != nil {
		return report.Manifest{}, err
	}

	snapshot := expvarRecorder.Snapshot()
	families, gatherErr := registry.Gather()
	logger.Info("operations recorded",
		"expvar", expvarRecorder.Name(),
		"operations", len(snapshot.Results),
		"metric_families", len(families),
		"gather_error", gatherErr,
	)
	return manifest, nil
}

// newTracer picks OTLP export when an endpoint is set, then the span file,
// then the global provider.
func newTracer(cfg config.TracingConfig) (core.Tracer, func() error, error) {
	noop := func() error { return nil }
	if cfg.File == "" || (cfg.Enabled && cfg.Endpoint != "") {
		return telemetry.NewOTelTracer(nil), noop, nil
	}
	f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, noop, fmt.Errorf("open trace file: %w", err)
	}
	tracer := core.NewSpanLogTracer(f)
	return tracer, func() error { return errors.Join(tracer.Err(), f.Close()) }, nil
}

// fanoutRecorder forwards every observation to each recorder in order.
type fanoutRecorder []core.MetricsRecorder

func (f fanoutRecorder) Observe(ctx context.Context, op string, status core.OperationStatus, d time.Duration) {
	for _, r := range f {
		r.Observe(ctx, op, status, d)
	}
}

type step struct {
	name string
	do   func(context.Context) (domain.Outcome, error)
}

func replayDemo(ctx context.Context, svc *core.Service, logger *slog.Logger) error {
	today := time.Now().Format("2006-01-02")
	login := func(role domain.Role, name string) func(context.Context) (domain.Outcome, error) {
		return func(ctx context.Context) (domain.Outcome, error) {
			_, out, err := svc.Login(ctx, role, name)
			return out, err
		}
	}
	steps := []step{
		{"student login", login(domain.RoleStudent, "Aditi Sharma")},
		{"apply", func(ctx context.Context) (domain.Outcome, error) {
			_, out, err := svc.ApplyForInternship(ctx, "3")
			return out, err
		}},
		{"log entry", func(ctx context.Context) (domain.Outcome, error) {
			return svc.AddLogEntry(ctx, domain.LogbookEntry{
				ID:            "demo-" + today,
				Date:          today,
				Activity:      "Paired on report export pipeline",
				Hours:         3,
				SkillsLearned: []string{"Go", "CSV"},
				Status:        domain.LogbookStatusPending,
			})
		}},
		{"read notifications", svc.MarkAllNotificationsRead},
		{"college login", login(domain.RoleCollege, "Placement Cell")},
		{"approve log", func(ctx context.Context) (domain.Outcome, error) {
			return svc.ApproveLogbookEntry(ctx, "l1")
		}},
		{"shortlist", func(ctx context.Context) (domain.Outcome, error) {
			return svc.UpdateApplicationStatus(ctx, "a2", domain.ApplicationStatusShortlisted)
		}},
		{"student status", func(ctx context.Context) (domain.Outcome, error) {
			return svc.UpdateStudentStatus(ctx, "s2", domain.StudentStatusInterning)
		}},
		{"industry login", login(domain.RoleIndustry, "DataMinds Recruiting")},
		{"post internship", func(ctx context.Context) (domain.Outcome, error) {
			return svc.PostInternship(ctx, domain.Internship{
				ID:           "demo-" + today,
				Title:        "Backend Engineering Intern",
				Company:      "DataMinds Analytics",
				Type:         "Remote",
				Requirements: []string{"Go", "SQL"},
				PostedDate:   today,
			})
		}},
		{"logout", svc.Logout},
	}
	for _, st := range steps {
		out, err := st.do(ctx)
		if err != nil {
			return fmt.Errorf("demo %s: %w", st.name, err)
		}
		logger.Debug("demo step", "step", st.name, "applied", out.Applied, "reason", string(out.Reason))
	}
	return nil
}
