package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/marcus/blog-pipeline/internal/blog"
)

// progressStream pushes job progress to one client as Server-Sent Events.
// Three event types flow over it: "progress" snapshots while the pipeline
// runs, one "complete" when the job comes to rest, "error" if the job
// disappears mid-stream.
type progressStream struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

func newProgressStream(w http.ResponseWriter) (*progressStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	return &progressStream{w: w, flusher: flusher}, nil
}

func (p *progressStream) emit(event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(p.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	p.flusher.Flush()
	return nil
}

// Progress sends one snapshot.
func (p *progressStream) Progress(snapshot blog.Progress) error {
	return p.emit("progress", snapshot)
}

// Done closes out the stream once the job rests.
func (p *progressStream) Done(job *blog.Job) {
	p.emit("complete", map[string]string{ //nolint:errcheck
		"job_id": job.ID.String(),
		"status": string(job.Status),
	})
}

// Lost reports that the job vanished mid-stream.
func (p *progressStream) Lost() {
	p.emit("error", map[string]string{"error": "job no longer available"}) //nolint:errcheck
}
