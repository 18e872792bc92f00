package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sciome/bmdexpress-web/internal/analysis/domain"
	"github.com/sciome/bmdexpress-web/internal/api/http/apierror"
)

// stream sends the job's transitions as Server-Sent Events until it
// reaches a terminal status or the client disconnects.
func (h *Handler) stream(c *gin.Context) {
	id := c.Param("id")

	// Subscribe before reading the snapshot so no transition is missed.
	sub := h.broker.Subscribe(id)
	defer sub.Close()

	job, err := h.jobs.Status(id)
	if err != nil {
		apierror.Write(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // nginx: disable buffering

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		apierror.Abort(c, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	writeEvent(c, "initial", job)
	flusher.Flush()
	if job.Status.Terminal() {
		return
	}
	last := job.Status

	ctx := c.Request.Context()
	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprint(c.Writer, ": keep-alive\n\n")
			flusher.Flush()

		case next, ok := <-sub.C():
			if !ok {
				// Closed by the broker after a terminal event, which may
				// have been dropped on a full buffer.
				if final, err := h.jobs.Status(id); err == nil && final.Status != last {
					writeEvent(c, "status", final)
					flusher.Flush()
				}
				return
			}
			// The snapshot read above may already be newer than queued events.
			if next.Status == last || (next.Status == domain.StatusPending && last != domain.StatusPending) {
				continue
			}
			last = next.Status
			writeEvent(c, "status", next)
			flusher.Flush()
			if next.Status.Terminal() {
				return
			}
		}
	}
}

func writeEvent(c *gin.Context, event string, job domain.Job) {
	data, _ := json.Marshal(job)
	fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event, string(data))
}
