package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/andrewdunn358-dev/Veteran-sub000/pkg/logging"
)

// emitTimeout bounds background sink writes so a slow collaborator can
// never back up the assessment path.
const emitTimeout = 5 * time.Second

// Emitter fans records out to the configured sinks. Ordinary records are
// written in the background and sink failures are logged, never surfaced:
// loss of an audit record must not block chat flow. Escalation records are
// written synchronously first so a RED event is durable before the caller
// replies.
type Emitter struct {
	sinks  []Sink
	logger *logging.Logger

	onFailure func()
}

// NewEmitter creates an emitter over the given sinks.
func NewEmitter(logger *logging.Logger, sinks ...Sink) *Emitter {
	if logger == nil {
		logger = logging.Default()
	}
	return &Emitter{sinks: sinks, logger: logger}
}

// OnFailure registers a callback invoked once per failed sink write, used
// to feed the audit failure counter.
func (e *Emitter) OnFailure(fn func()) {
	e.onFailure = fn
}

// Emit assigns the record an id and timestamp if unset and dispatches it.
// The returned id identifies the record in every sink.
func (e *Emitter) Emit(ctx context.Context, rec Record) string {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	if rec.Escalation {
		e.writeAll(ctx, rec)
		return rec.ID
	}

	bg := context.WithoutCancel(ctx)
	go func() {
		ctx, cancel := context.WithTimeout(bg, emitTimeout)
		defer cancel()
		e.writeAll(ctx, rec)
	}()
	return rec.ID
}

func (e *Emitter) writeAll(ctx context.Context, rec Record) {
	for _, sink := range e.sinks {
		if err := sink.Write(ctx, rec); err != nil {
			e.logger.Error("audit: failed to write record",
				"error", err,
				"record_id", rec.ID,
				"session_id", rec.SessionID,
				"escalation", rec.Escalation,
			)
			if e.onFailure != nil {
				e.onFailure()
			}
		}
	}
}
