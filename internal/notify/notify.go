// Package notify implements the birthday announcer: a background loop that
// posts today's birthdays to a Matrix room. It is isolated from the request
// path; a failed announcement is logged and retried on the next cycle, never
// surfaced to dashboard clients.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// BirthdaySource abstracts the single service call the announcer needs.
type BirthdaySource interface {
	// TodaysBirthdays returns the names whose birthday is today.
	TodaysBirthdays(ctx context.Context) ([]string, error)
}

// Config holds tunables for the Announcer.
type Config struct {
	Interval      time.Duration // how often a cycle begins
	HomeserverURL string        // Matrix homeserver base URL
	Username      string
	Password      string
	RoomID        string
	Logger        *slog.Logger // optional logger (defaults to slog.Default())
}

// Metrics accumulates counters (in-memory) for operational insight.
type Metrics struct {
	mu     sync.Mutex
	Cycles uint64
	Sent   uint64
}

// MetricsView is a read-only snapshot safe to copy.
type MetricsView struct {
	Cycles uint64
	Sent   uint64
}

// Announcer encapsulates the background announcement loop.
type Announcer struct {
	source  BirthdaySource
	cfg     Config
	client  *http.Client
	metrics *Metrics

	// OnSent is an optional hook invoked after a successful announcement.
	OnSent func()

	ticker *time.Ticker
	stopCh chan struct{}
	doneCh chan struct{}
	once   sync.Once
}

// happyEmojis are appended to each announced name.
var happyEmojis = []string{"🥳", "🎉", "🍾", "🎂", "🎈", "🎁"}

// New constructs but does not start an Announcer.
func New(source BirthdaySource, cfg Config) *Announcer {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Announcer{
		source:  source,
		cfg:     cfg,
		client:  &http.Client{Timeout: 15 * time.Second},
		metrics: &Metrics{},
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}
}

// Start launches the announcer loop in a new goroutine.
func (a *Announcer) Start(ctx context.Context) {
	if a.ticker != nil {
		return
	} // already started
	a.ticker = time.NewTicker(a.cfg.Interval)
	go a.loop(ctx)
}

// Stop signals the loop to exit and waits for completion.
func (a *Announcer) Stop() {
	a.once.Do(func() { close(a.stopCh) })
	<-a.doneCh
}

// MetricsSnapshot returns a copy of current metrics.
func (a *Announcer) MetricsSnapshot() MetricsView {
	a.metrics.mu.Lock()
	defer a.metrics.mu.Unlock()
	return MetricsView{Cycles: a.metrics.Cycles, Sent: a.metrics.Sent}
}

func (a *Announcer) loop(ctx context.Context) {
	log := a.cfg.Logger.With("domain", "notify")
	defer func() {
		if a.ticker != nil {
			a.ticker.Stop()
		}
		close(a.doneCh)
	}()
	for {
		select {
		case <-ctx.Done():
			log.Info("announcer stop", "reason", "context_cancel")
			return
		case <-a.stopCh:
			log.Info("announcer stop", "reason", "stop_signal")
			return
		case <-a.ticker.C:
			a.runCycle(ctx)
		}
	}
}

// runCycle performs one lookup + announcement cycle.
func (a *Announcer) runCycle(ctx context.Context) {
	log := a.cfg.Logger.With("domain", "notify", "action", "cycle")
	a.metrics.mu.Lock()
	a.metrics.Cycles++
	a.metrics.mu.Unlock()

	names, err := a.source.TodaysBirthdays(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Error("lookup", "error", err)
		}
		return
	}
	if len(names) == 0 {
		return
	}
	if err := a.Announce(ctx, names); err != nil {
		log.Error("announce", "error", err)
		return
	}
	a.metrics.mu.Lock()
	a.metrics.Sent++
	a.metrics.mu.Unlock()
	if a.OnSent != nil {
		a.OnSent()
	}
	log.Info("announced", "count", len(names))
}

// Announce logs in and posts one message naming everyone in names.
func (a *Announcer) Announce(ctx context.Context, names []string) error {
	token, err := a.login(ctx)
	if err != nil {
		return err
	}
	return a.sendMessage(ctx, token, buildMessage(names))
}

// buildMessage renders the announcement body.
func buildMessage(names []string) string {
	var b strings.Builder
	b.WriteString("Happy birthday toooo:\n")
	for _, name := range names {
		b.WriteString("\n- ")
		b.WriteString(name)
		b.WriteString(" ")
		b.WriteString(happyEmojis[rand.Intn(len(happyEmojis))])
	}
	return b.String()
}

// login performs a password login and returns the access token.
func (a *Announcer) login(ctx context.Context) (string, error) {
	body, err := json.Marshal(map[string]string{
		"type":     "m.login.password",
		"user":     a.cfg.Username,
		"password": a.cfg.Password,
	})
	if err != nil {
		return "", err
	}
	endpoint := a.cfg.HomeserverURL + "/_matrix/client/r0/login"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("matrix login: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("matrix login returned %d", resp.StatusCode)
	}
	var tok struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return "", fmt.Errorf("decode login response: %w", err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("login response missing access_token")
	}
	return tok.AccessToken, nil
}

// sendMessage PUTs a m.room.message event with a fresh transaction id.
func (a *Announcer) sendMessage(ctx context.Context, token, message string) error {
	body, err := json.Marshal(map[string]string{
		"msgtype": "m.text",
		"body":    message,
	})
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/_matrix/client/r0/rooms/%s/send/m.room.message/%s?access_token=%s",
		a.cfg.HomeserverURL, url.PathEscape(a.cfg.RoomID), uuid.New().String(), url.QueryEscape(token))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("matrix send: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("matrix send returned %d", resp.StatusCode)
	}
	return nil
}
