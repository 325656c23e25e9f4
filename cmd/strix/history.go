package main

import (
	"context"
	"encoding/base64"
	"os"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

// fileHistory appends results as json lines. It stands in for the desktop
// app's history store when running headless.
type fileHistory struct {
	mu   sync.Mutex
	path string
}

func newFileHistory(path string) *fileHistory {
	return &fileHistory{path: path}
}

type historyRecord struct {
	Type      string    `json:"type"`
	Text      string    `json:"text"`
	Image     string    `json:"image,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (h *fileHistory) SaveText(_ context.Context, text string) error {
	return h.append(historyRecord{Type: "text", Text: text, Timestamp: time.Now()})
}

func (h *fileHistory) SaveImage(_ context.Context, data []byte, text string) error {
	return h.append(historyRecord{
		Type:      "image",
		Text:      text,
		Image:     base64.StdEncoding.EncodeToString(data),
		Timestamp: time.Now(),
	})
}

func (h *fileHistory) append(rec historyRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	f, err := os.OpenFile(h.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	line, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = f.Write(append(line, '\n'))
	return err
}
