package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// sseWriter formats Server-Sent Events onto a response.
type sseWriter struct {
	w http.ResponseWriter
}

func newSSEWriter(w http.ResponseWriter) *sseWriter { return &sseWriter{w: w} }

// Start writes the event-stream headers.
func (s *sseWriter) Start() {
	h := s.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	s.w.WriteHeader(http.StatusOK)
	s.Flush()
}

// Event sends one named event with a JSON data line and flushes it.
func (s *sseWriter) Event(name string, data any) error {
	b, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", name, b); err != nil {
		return err
	}
	s.Flush()
	return nil
}

// Flush flushes the HTTP response writer if it supports flushing.
func (s *sseWriter) Flush() {
	if f, ok := s.w.(http.Flusher); ok {
		f.Flush()
	}
}
