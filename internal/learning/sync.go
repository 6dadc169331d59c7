// Package learning pushes learned field mappings and custom answers to an
// external aggregation endpoint. The push is strictly best effort: no
// retry, failures are logged and swallowed, and callers never block on it
// beyond the client timeout.
package learning

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jonathan/form-agent/internal/fieldtype"
	"github.com/jonathan/form-agent/internal/logging"
	"github.com/jonathan/form-agent/internal/profile"
)

// defaultTimeout bounds one sync attempt end to end.
const defaultTimeout = 5 * time.Second

// Payload is the wire format of one sync push.
type Payload struct {
	Mappings      map[string]fieldtype.Type `json:"mappings,omitempty"`
	CustomAnswers map[string]string         `json:"custom_answers,omitempty"`
	Portal        string                    `json:"portal,omitempty"`
	Timestamp     string                    `json:"timestamp"`
}

// Syncer posts learned data to one endpoint. A zero endpoint disables
// syncing entirely.
type Syncer struct {
	endpoint string
	client   *http.Client
	log      *logging.Logger
}

// NewSyncer builds a syncer. A nil logger disables logging.
func NewSyncer(endpoint string, log *logging.Logger) *Syncer {
	if log == nil {
		log = logging.Nop()
	}
	return &Syncer{
		endpoint: endpoint,
		client:   &http.Client{Timeout: defaultTimeout},
		log:      log,
	}
}

// Push sends the record's learned mappings and custom answers. Errors are
// logged, never returned; the distinguishing contract versus the engine's
// bounded-retry loop is exactly "no retry, logged".
func (s *Syncer) Push(ctx context.Context, rec *profile.Record, portal string) {
	if s.endpoint == "" {
		return
	}
	if len(rec.LearnedMappings) == 0 && len(rec.CustomAnswers) == 0 {
		return
	}

	payload := Payload{
		Mappings:      rec.LearnedMappings,
		CustomAnswers: rec.CustomAnswers,
		Portal:        portal,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn("learning sync marshal failed", "error", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		s.log.Warn("learning sync request build failed", "error", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Warn("learning sync failed", "endpoint", s.endpoint, "error", err)
		return
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		s.log.Warn("learning sync rejected", "endpoint", s.endpoint, "status", resp.StatusCode)
		return
	}
	s.log.Debug("learning sync pushed",
		"mappings", len(payload.Mappings), "answers", len(payload.CustomAnswers))
}
