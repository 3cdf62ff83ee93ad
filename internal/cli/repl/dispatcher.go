package repl

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/yndnr/kvsh/internal/cli/output"
	"github.com/yndnr/kvsh/internal/core/domain"
	"github.com/yndnr/kvsh/internal/resp"
	"github.com/yndnr/kvsh/internal/telemetry/logger"
	"github.com/yndnr/kvsh/internal/telemetry/metric"
)

// DefaultScanCount is the SCAN page size when none (or garbage) is given.
const DefaultScanCount = 10

// Store is the key-value store as seen by the dispatcher.
type Store interface {
	ProbeType(ctx context.Context, key string) (domain.KeyType, error)
	FetchScalar(ctx context.Context, key string) (domain.ScalarString, error)
	FetchFields(ctx context.Context, key string) (domain.FieldList, error)
	FetchItems(ctx context.Context, key string) (domain.ItemList, error)
	FetchMembers(ctx context.Context, key string) (domain.MemberSet, error)
	FetchScored(ctx context.Context, key string) (domain.ScoredList, error)
	ExecuteGeneric(ctx context.Context, verb string, args []string) (resp.Reply, error)
}

// Invocation is a tokenized command line.
type Invocation struct {
	Verb string // upper-cased
	Args []string
}

// Parse splits line on whitespace. ok is false for a blank line.
func Parse(line string) (inv Invocation, ok bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Invocation{}, false
	}
	return Invocation{Verb: strings.ToUpper(fields[0]), Args: fields[1:]}, true
}

// Dispatcher executes command lines against a Store and renders results.
type Dispatcher struct {
	store     Store
	out       io.Writer
	history   *History
	formatter output.Formatter
	metrics   *metric.Registry
	log       logger.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithHistory records every dispatched line in h.
func WithHistory(h *History) DispatcherOption {
	return func(d *Dispatcher) { d.history = h }
}

// WithFormatter selects how results are rendered. Messages stay plain text.
func WithFormatter(f output.Formatter) DispatcherOption {
	return func(d *Dispatcher) { d.formatter = f }
}

// WithMetrics records command counts and latencies in r.
func WithMetrics(r *metric.Registry) DispatcherOption {
	return func(d *Dispatcher) { d.metrics = r }
}

// WithLogger sets the dispatcher's logger.
func WithLogger(l logger.Logger) DispatcherOption {
	return func(d *Dispatcher) { d.log = l }
}

// NewDispatcher creates a dispatcher writing results to out.
func NewDispatcher(store Store, out io.Writer, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		store:     store,
		out:       out,
		formatter: &output.TextFormatter{},
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch handles one submitted line and reports whether the session
// should end. Blank lines and quit are never recorded in history.
func (d *Dispatcher) Dispatch(ctx context.Context, line string) (quit bool) {
	inv, ok := Parse(line)
	if !ok {
		return false
	}
	if inv.Verb == "QUIT" {
		return true
	}
	if d.history != nil {
		d.history.Add(strings.TrimSpace(line))
	}
	_ = d.Run(ctx, inv)
	return false
}

// Run executes inv and writes its result or error message. The returned
// error has already been reported to the output.
func (d *Dispatcher) Run(ctx context.Context, inv Invocation) error {
	start := time.Now()
	outcome, err := d.run(ctx, inv)
	elapsed := time.Since(start)

	d.metrics.ObserveCommand(inv.Verb, outcome, elapsed)
	if err != nil {
		d.log.Debug("command failed", "verb", inv.Verb, "outcome", outcome, "code", domain.GetErrorCode(err), "error", err)
		d.report(err)
		return err
	}
	d.log.Debug("command executed", "verb", inv.Verb, "args", len(inv.Args), "outcome", outcome, "duration", elapsed)
	return nil
}

func (d *Dispatcher) run(ctx context.Context, inv Invocation) (string, error) {
	var err error
	switch inv.Verb {
	case "SCAN":
		err = d.scan(ctx, inv.Args)
	case "GET":
		err = d.get(ctx, inv.Args)
	default:
		return d.generic(ctx, inv)
	}
	return outcomeOf(err), err
}

func (d *Dispatcher) generic(ctx context.Context, inv Invocation) (string, error) {
	reply, err := d.store.ExecuteGeneric(ctx, inv.Verb, inv.Args)
	if err != nil {
		return metric.OutcomeError, storeError(err)
	}
	if err := d.emit(reply); err != nil {
		return metric.OutcomeError, err
	}
	if _, isErr := reply.(resp.Error); isErr {
		return metric.OutcomeError, nil
	}
	return metric.OutcomeOK, nil
}

func (d *Dispatcher) scan(ctx context.Context, args []string) error {
	count := DefaultScanCount
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil {
			count = n
		}
	}

	reply, err := d.store.ExecuteGeneric(ctx, "SCAN", []string{"0", "MATCH", "*", "COUNT", strconv.Itoa(count)})
	if err != nil {
		return storeError(err)
	}
	if e, ok := reply.(resp.Error); ok {
		return domain.ErrStore.WithCause(e)
	}

	arr, ok := reply.(resp.Array)
	if !ok || len(arr) != 2 {
		return domain.ErrUnexpectedReply.WithDetails("SCAN reply is not a 2-element array")
	}
	keys, ok := arr[1].(resp.Array)
	if !ok {
		return domain.ErrUnexpectedReply.WithDetails("SCAN key list is not an array")
	}

	page := output.ScanPage{Cursor: arr[0].Text(), Count: count, Keys: make([]string, len(keys))}
	for i, k := range keys {
		page.Keys[i] = k.Text()
	}
	return d.emit(page)
}

func (d *Dispatcher) get(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return domain.ErrUsage.WithDetails("Usage: GET <key>")
	}
	key := args[0]

	kind, err := d.store.ProbeType(ctx, key)
	if err != nil {
		return storeError(err)
	}

	var v domain.Value
	switch kind {
	case domain.KeyTypeNone, domain.KeyTypeString:
		v, err = d.store.FetchScalar(ctx, key)
	case domain.KeyTypeHash:
		v, err = d.store.FetchFields(ctx, key)
	case domain.KeyTypeList:
		v, err = d.store.FetchItems(ctx, key)
	case domain.KeyTypeSet:
		v, err = d.store.FetchMembers(ctx, key)
	case domain.KeyTypeZSet:
		v, err = d.store.FetchScored(ctx, key)
	default:
		return domain.ErrUnsupportedType.WithDetails(string(kind))
	}
	if err != nil {
		return storeError(err)
	}
	return d.emit(v)
}

func (d *Dispatcher) emit(data any) error {
	return d.formatter.Format(d.out, data)
}

// report writes the one-line message for a failed command.
func (d *Dispatcher) report(err error) {
	var msg string
	switch {
	case domain.IsDomainError(err, domain.ErrUsage.Code):
		msg = domain.UserMessage(err)
	case domain.IsDomainError(err, domain.ErrUnsupportedType.Code):
		msg = "Unsupported type: " + domain.UserMessage(err)
	default:
		msg = "Error: " + domain.UserMessage(err)
	}
	_, _ = io.WriteString(d.out, msg+"\n")
}

func storeError(err error) error {
	var de *domain.DomainError
	if errors.As(err, &de) {
		return err
	}
	return domain.ErrStore.WithCause(err)
}

func outcomeOf(err error) string {
	if err == nil {
		return metric.OutcomeOK
	}
	switch domain.GetErrorCode(err) {
	case domain.ErrUsage.Code:
		return metric.OutcomeUsage
	case domain.ErrUnsupportedType.Code:
		return metric.OutcomeUnsupported
	default:
		return metric.OutcomeError
	}
}
