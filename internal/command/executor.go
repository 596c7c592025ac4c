// Package command implements the command-layer boundary between
// presentation adapters and the core. Each command takes free-text
// arguments plus the acting user's identity and returns one of a
// closed set of structured Response variants.
package command

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"fishsticks/internal/billing"
	"fishsticks/internal/ledger"
	"fishsticks/internal/menuquery"
	"fishsticks/internal/metrics"
	"fishsticks/internal/storage"
)

// Env carries the per-deployment configuration commands need.
type Env struct {
	// BaseURL is the public URL of this instance, used to build menu
	// links. Ends with a slash.
	BaseURL string

	// Ledger is nil when no sharebill instance is configured; the
	// sharebill and suggest commands then fail with
	// MissingConfigError.
	Ledger *ledger.Client
}

// Context is one command invocation: its free-text arguments, the
// acting user and the environment.
type Context struct {
	Args     string
	UserName string
	Env      *Env
}

// Executor runs commands against the shared state. A single exclusive
// lock serializes all command execution, whichever adapter the
// command came from, so the core needs no finer-grained concurrency
// control. The cost is head-of-line blocking while a command does
// slow I/O, notably the ledger post during sharebill.
type Executor struct {
	mu      sync.Mutex
	store   storage.Store
	matcher *menuquery.Matcher
	bills   *billing.Engine
}

// NewExecutor creates an Executor over the given store.
func NewExecutor(store storage.Store) *Executor {
	return &Executor{
		store:   store,
		matcher: menuquery.New(store),
		bills:   billing.NewEngine(store),
	}
}

// Execute runs one command under the exclusive lock. Unknown command
// words yield an UnknownCommand response, not an error. A panicking
// handler is recovered into an *InternalError so the lock is released
// and later commands still run.
func (e *Executor) Execute(ctx context.Context, cmd string, cmdCtx Context) (resp Response, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Command panicked", "command", cmd, "panic", r)
			resp, err = nil, &InternalError{Value: r}
		}

		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.CommandsTotal.WithLabelValues(cmd, status).Inc()
		metrics.CommandDuration.WithLabelValues(cmd).Observe(time.Since(start).Seconds())

		if err != nil {
			slog.Warn("Command failed",
				"command", cmd, "user", cmdCtx.UserName, "error", err)
		} else {
			slog.Info("Command executed",
				"command", cmd, "user", cmdCtx.UserName,
				"duration_ms", time.Since(start).Milliseconds())
		}
	}()

	return e.dispatch(ctx, cmd, cmdCtx)
}

// dispatch runs a command assuming the lock is already held. sudo
// re-enters here rather than Execute to avoid self-deadlock.
func (e *Executor) dispatch(ctx context.Context, cmd string, cmdCtx Context) (Response, error) {
	handler, ok := handlers[cmd]
	if !ok {
		return UnknownCommand{Cmd: cmd, Args: cmdCtx.Args}, nil
	}
	return handler(e, ctx, cmdCtx)
}
