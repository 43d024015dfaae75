package agui

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	"github.com/spetersoncode/steward/event"
)

// Turn is a prepared turn of a conversation.
type Turn interface {
	// Run starts the turn.
	Run(ctx context.Context) *event.Stream

	// Finish records a completed turn in its conversation.
	Finish(ctx context.Context) error
}

// BeginFunc prepares a turn answering text in the conversation threadID.
type BeginFunc func(ctx context.Context, threadID, text string) (Turn, error)

// Handler runs turns for AG-UI requests and streams their events as SSE.
type Handler struct {
	begin  BeginFunc
	logger *slog.Logger
}

// NewHandler creates a handler that starts turns with begin.
func NewHandler(begin BeginFunc, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{begin: begin, logger: logger}
}

// ServeHTTP handles POST requests to run a turn and stream events via SSE.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		h.logger.Warn("method not allowed", "method", r.Method, "path", r.URL.Path)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var input RunAgentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("invalid request body", "error", err)
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	prepared, err := input.Prepare()
	if err != nil {
		h.logger.Warn("invalid input", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	mapper := NewMapper(prepared.ThreadID, prepared.RunID)
	log := h.logger.With("run_id", mapper.RunID(), "thread_id", mapper.ThreadID())

	ctx := r.Context()
	turn, err := h.begin(ctx, mapper.ThreadID(), prepared.Text)
	if err != nil {
		log.Warn("cannot start turn", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("streaming not supported")
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	log.Info("request started")
	sent := 0
	write := func(evs ...events.Event) error {
		for _, ev := range evs {
			if err := writeSSE(w, flusher, ev); err != nil {
				return err
			}
			sent++
		}
		return nil
	}

	if err := write(mapper.RunStarted()); err != nil {
		log.Error("failed to write SSE event", "error", err)
		return
	}

	stream := turn.Run(ctx)
	defer stream.Close()
	for stream.Next() {
		if err := write(mapper.MapEvent(stream.Event())...); err != nil {
			log.Error("failed to write SSE event", "error", err)
			return
		}
	}

	runErr := stream.Err()
	if runErr == nil {
		runErr = turn.Finish(ctx)
	}
	final := mapper.RunFinished()
	if runErr != nil {
		final = mapper.RunError(runErr)
	}
	if err := write(final...); err != nil {
		log.Error("failed to write SSE event", "error", err)
		return
	}

	duration := time.Since(start)
	if runErr != nil {
		log.Error("request failed", "duration_ms", duration.Milliseconds(), "events_sent", sent, "error", runErr)
		return
	}
	log.Info("request completed", "duration_ms", duration.Milliseconds(), "events_sent", sent)
}

// writeSSE writes an AG-UI event in SSE format.
func writeSSE(w http.ResponseWriter, flusher http.Flusher, ev events.Event) error {
	data, err := ev.ToJSON()
	if err != nil {
		return fmt.Errorf("serialize event: %w", err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type(), data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	flusher.Flush()
	return nil
}
