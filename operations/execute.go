package operations

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"os"

	"github.com/segmentio/ksuid"

	"github.com/shortcut-cli/sc/pkg/logger"
	"github.com/shortcut-cli/sc/resolver"
	"github.com/shortcut-cli/sc/template"
)

var (
	// ErrVariableSubstitution is returned when a $var() cannot be resolved before execution starts.
	ErrVariableSubstitution = errors.New("variable substitution failed")
	// ErrUnsupportedVersion is returned for templates whose version this engine does not understand.
	ErrUnsupportedVersion = errors.New("unsupported template version")
)

// Client sends a single request to the API. *shortcut.Client implements it.
type Client interface {
	Do(ctx context.Context, method, path string, body map[string]any) (any, error)
}

// FieldResolver rewrites authoring fields into a request body. *entityfields.Resolver implements it.
type FieldResolver interface {
	Resolve(ctx context.Context, action template.Action, entity template.Entity, fields map[string]any) (map[string]any, error)
}

// Config holds the dependencies of an Executor. Zero values are replaced with defaults by
// NewExecutor.
type Config struct {
	// Client sends requests. It may be nil for dry runs.
	Client Client
	// Fields rewrites fields before sending. Fields are sent as written when nil.
	Fields FieldResolver
	Logger logger.Logger
	Routes *RouteRegistry

	// Stdout receives progress lines, dry-run requests and the summary line. Nil silences them.
	Stdout io.Writer
	// Prompt receives the confirmation summary. Defaults to Stdout.
	Prompt io.Writer
	Stdin  io.Reader

	// DryRun prints every request instead of sending it.
	DryRun bool
	// Confirmed skips the confirmation prompt.
	Confirmed bool
}

// Executor runs templates.
type Executor struct {
	cfg Config
}

// NewExecutor creates an Executor.
func NewExecutor(cfg Config) *Executor {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.Routes == nil {
		cfg.Routes = NewRouteRegistry()
	}
	if cfg.Prompt == nil {
		cfg.Prompt = cfg.Stdout
	}
	if cfg.Prompt == nil {
		cfg.Prompt = io.Discard
	}
	if cfg.Stdin == nil {
		cfg.Stdin = os.Stdin
	}

	return &Executor{cfg: cfg}
}

// Execute runs every operation of t in order.
//
// Variables are substituted before anything else and any failure there is fatal. Unless the run
// is a dry run or was confirmed up front, the user is then asked to confirm; declining returns
// ErrAborted before any request is sent.
//
// Failures of individual operations do not produce an error: they are recorded in the returned
// ExecutionResult, and with the stop policy the run ends at the first one. Callers should check
// ExecutionResult.Failed.
func (e *Executor) Execute(ctx context.Context, t *template.Template) (*ExecutionResult, error) {
	if t.Version != template.SupportedVersion {
		return nil, fmt.Errorf("%w %d (want %d)", ErrUnsupportedVersion, t.Version, template.SupportedVersion)
	}

	ops, err := substituteVars(t)
	if err != nil {
		return nil, err
	}
	total := t.Total()

	if !e.cfg.DryRun && !e.cfg.Confirmed {
		if err := confirm(ctx, e.cfg.Prompt, e.cfg.Stdin, t, total); err != nil {
			return nil, err
		}
	}
	if !e.cfg.DryRun && e.cfg.Client == nil {
		return nil, errors.New("no API client configured")
	}

	runID := ksuid.New().String()
	r := &run{
		Executor: e,
		runID:    runID,
		lggr:     e.cfg.Logger.Named("executor"),
		store:    NewAliasStore(),
		reporter: NewMemoryReporter(),
		progress: progress{w: e.cfg.Stdout, total: total},
	}

	r.lggr.Infow("Executing template", "run_id", runID, "operations", len(ops), "total", total, "dry_run", e.cfg.DryRun)
	for i, op := range ops {
		if stop := r.operation(ctx, op, t.Policy(t.Operations[i])); stop {
			r.lggr.Infow("Stopping after failed operation", "run_id", runID, "operation", i)
			break
		}
	}

	results := r.reporter.Results()
	result := &ExecutionResult{
		RunID:   runID,
		DryRun:  e.cfg.DryRun,
		Results: results,
		Summary: summarize(total, results),
	}
	r.progress.summary(result.Summary)
	r.lggr.Infow("Template executed", "run_id", runID,
		"succeeded", result.Summary.Succeeded, "failed", result.Summary.Failed)

	return result, nil
}

// substituteVars returns a copy of the operations with every $var() replaced.
func substituteVars(t *template.Template) ([]template.Operation, error) {
	ops := make([]template.Operation, len(t.Operations))
	var errs []error
	sub := func(i int, part string, v any) any {
		out, err := resolver.SubstituteVars(v, t.Vars)
		if err != nil {
			errs = append(errs, fmt.Errorf("operations[%d].%s: %w", i, part, err))
			return v
		}

		return out
	}

	for i, op := range t.Operations {
		if op.ID != nil {
			op.ID = sub(i, "id", op.ID)
		}
		if op.Fields != nil {
			op.Fields, _ = sub(i, "fields", op.Fields).(map[string]any)
		}
		if op.Repeat != nil {
			repeat := make([]map[string]any, len(op.Repeat))
			for j, entry := range op.Repeat {
				repeat[j], _ = sub(i, fmt.Sprintf("repeat[%d]", j), entry).(map[string]any)
			}
			op.Repeat = repeat
		}
		ops[i] = op
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrVariableSubstitution, errors.Join(errs...))
	}

	return ops, nil
}

// run is the state of a single Execute call.
type run struct {
	*Executor

	runID    string
	lggr     logger.Logger
	store    *AliasStore
	reporter Reporter
	progress progress

	next int // index of the next result
}

// operation executes op and reports whether the run must stop.
func (r *run) operation(ctx context.Context, op template.Operation, policy template.ErrorPolicy) bool {
	if len(op.Repeat) == 0 {
		res, err := r.request(ctx, op, op.Fields)
		if err != nil {
			return policy == template.ErrorPolicyStop
		}
		r.storeAlias(op.Alias, res)

		return false
	}

	// failed entries leave null so indices stay aligned with the repeat entries
	entries := make([]any, len(op.Repeat))
	for j, entry := range op.Repeat {
		fields := maps.Clone(op.Fields)
		if fields == nil {
			fields = map[string]any{}
		}
		maps.Copy(fields, entry)

		res, err := r.request(ctx, op, fields)
		if err != nil {
			if policy == template.ErrorPolicyStop {
				return true
			}
			continue
		}
		entries[j] = res
	}
	r.storeAlias(op.Alias, entries)

	return false
}

// request resolves, routes and sends one request and records its result.
func (r *run) request(ctx context.Context, op template.Operation, fields map[string]any) (any, error) {
	index := r.next
	r.next++
	r.lggr.Infow("Executing operation", "run_id", r.runID, "index", index,
		"action", op.Action, "entity", op.Entity, "alias", op.Alias)

	id, res, err := r.send(ctx, index, op, fields)
	if err := r.reporter.AddResult(NewOperationResult(index, op, res, err)); err != nil {
		r.lggr.Errorw("Failed to record result", "run_id", r.runID, "index", index, "error", err)
	}
	if err != nil {
		r.lggr.Errorw("Operation failed", "run_id", r.runID, "index", index,
			"action", op.Action, "entity", op.Entity, "error", err)
		r.progress.failure(index, op.Action, op.Entity, err)

		return nil, err
	}
	r.progress.success(index, op.Action, op.Entity, id, res)

	return res, nil
}

// send returns the resolved operation id alongside the response. In dry-run mode the response is
// a placeholder whose id depends only on the request index.
func (r *run) send(ctx context.Context, index int, op template.Operation, fields map[string]any) (any, any, error) {
	id := op.ID
	if id != nil {
		var err error
		if id, err = resolver.ResolveRefs(id, r.store); err != nil {
			return nil, nil, fmt.Errorf("id: %w", err)
		}
	}

	resolvedFields, err := resolver.ResolveRefs(fields, r.store)
	if err != nil {
		return id, nil, fmt.Errorf("fields: %w", err)
	}
	resolved, _ := resolvedFields.(map[string]any)

	req, err := r.cfg.Routes.Retrieve(op.Action, op.Entity, id, resolved)
	if err != nil {
		return id, nil, err
	}

	body := resolved
	if r.cfg.Fields != nil {
		if body, err = r.cfg.Fields.Resolve(ctx, op.Action, op.Entity, resolved); err != nil {
			return id, nil, err
		}
	}
	if req.Method == http.MethodDelete {
		body = nil
	}

	if r.cfg.DryRun {
		r.progress.dryRun(req, body)

		return id, map[string]any{"id": (index + 1) * 1000, "entity_type": string(op.Entity)}, nil
	}

	r.lggr.Debugw("Sending request", "run_id", r.runID, "request", req.String())
	res, err := r.cfg.Client.Do(ctx, req.Method, req.Path, body)
	if err != nil {
		return id, nil, err
	}

	return id, res, nil
}

func (r *run) storeAlias(alias string, value any) {
	if alias == "" {
		return
	}
	if err := r.store.Set(alias, value); err != nil {
		r.lggr.Errorw("Failed to store alias", "run_id", r.runID, "alias", alias, "error", err)
	}
}
