package psod

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/swarm-core/pkg/logger"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/models"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/utils"
)

const (
	callbackSecretHeader = "X-PSO-Callback-Secret"
	maxCallbackRedirects = 5
)

var (
	ErrInvalidURL       = errors.New("invalid callback url")
	ErrMetadataEndpoint = errors.New("callback url targets a cloud metadata endpoint")
	ErrInternalHost     = errors.New("callback url targets an internal address")
)

// NotificationPayload is the JSON body posted to a run's callback URL
type NotificationPayload struct {
	RunID     string            `json:"run_id"`
	Status    models.RunStatus  `json:"status"`
	Objective string            `json:"objective"`
	CreatedAt time.Time         `json:"created_at"`
	StartTime time.Time         `json:"start_time,omitzero"`
	EndTime   time.Time         `json:"end_time,omitzero"`
	Error     string            `json:"error,omitempty"`
	Result    *models.RunResult `json:"result,omitempty"`
	Timestamp int64             `json:"timestamp"` // unix ms when sent
}

// Notifier posts run completion callbacks
type Notifier struct {
	httpClient *http.Client
	maxRetries int
	backoff    utils.BackoffStrategy
	wg         sync.WaitGroup
}

func NewNotifier() *Notifier {
	return &Notifier{
		httpClient: &http.Client{
			Timeout:       10 * time.Second,
			CheckRedirect: checkCallbackRedirect,
		},
		maxRetries: 3,
		backoff:    utils.NewExponentialBackoff(time.Second, 30*time.Second, 2),
	}
}

// SetBackoff replaces the retry strategy.
func (n *Notifier) SetBackoff(b utils.BackoffStrategy, maxRetries int) {
	n.backoff = b
	n.maxRetries = maxRetries
}

// Wait blocks until every in-flight notification has finished.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// Notify sends the callback asynchronously. A {run_id} placeholder in the
// URL is replaced with the run ID. URLs that fail validation are dropped.
func (n *Notifier) Notify(callbackURL, callbackSecret string, rec *RunRecord) {
	if callbackURL == "" {
		return
	}
	if rec == nil || rec.Run == nil {
		logger.Warn("cannot notify: invalid run record", "callback_url", callbackURL)
		return
	}

	finalURL := strings.ReplaceAll(callbackURL, "{run_id}", rec.Run.ID)
	if err := ValidateCallbackURL(finalURL); err != nil {
		logger.Warn("refusing callback url", "run_id", rec.Run.ID, "callback_url", finalURL, "error", err)
		return
	}

	payload := NotificationPayload{
		RunID:     rec.Run.ID,
		Status:    rec.Run.Status,
		Objective: rec.Run.Objective,
		CreatedAt: rec.Run.CreatedAt,
		StartTime: rec.Run.StartTime,
		EndTime:   rec.Run.EndTime,
		Error:     rec.Run.Error,
		Result:    rec.Run.Result,
		Timestamp: time.Now().UTC().UnixMilli(),
	}

	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.send(finalURL, callbackSecret, payload)
	}()
}

func (n *Notifier) send(callbackURL, callbackSecret string, payload NotificationPayload) {
	body, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal notification payload", "run_id", payload.RunID, "error", err)
		return
	}

	var lastErr error
	for attempt := 0; attempt <= n.maxRetries; attempt++ {
		if attempt > 0 {
			delay := n.backoff.NextDelay(attempt - 1)
			logger.Debug("retrying notification",
				"run_id", payload.RunID,
				"attempt", attempt,
				"delay", delay)
			time.Sleep(delay)
		}

		lastErr = n.post(callbackURL, callbackSecret, body)
		if lastErr == nil {
			logger.Info("notification sent", "run_id", payload.RunID, "status", payload.Status)
			return
		}
		logger.Warn("notification attempt failed",
			"callback_url", callbackURL,
			"run_id", payload.RunID,
			"attempt", attempt+1,
			"error", lastErr)
	}

	logger.Error("failed to send notification after retries",
		"callback_url", callbackURL,
		"run_id", payload.RunID,
		"max_retries", n.maxRetries,
		"last_error", lastErr)
}

func (n *Notifier) post(callbackURL, callbackSecret string, body []byte) error {
	req, err := http.NewRequest(http.MethodPost, callbackURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "swarm-core/1.0")
	if callbackSecret != "" {
		req.Header.Set(callbackSecretHeader, callbackSecret)
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, snippet)
}

// ValidateCallbackURL rejects URLs that are not http(s), lack a host, or
// name a metadata service or a private, loopback or wildcard IP literal.
// Hostnames are not resolved.
func ValidateCallbackURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https", ErrInvalidURL)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: hostname is required", ErrInvalidURL)
	}

	switch strings.ToLower(host) {
	case "metadata.google.internal", "metadata":
		return ErrMetadataEndpoint
	}

	ip := net.ParseIP(host)
	if ip == nil {
		return nil
	}
	if ip.Equal(net.IPv4(169, 254, 169, 254)) || ip.Equal(net.ParseIP("fd00:ec2::254")) {
		return ErrMetadataEndpoint
	}
	if ip.IsUnspecified() || isPrivateIP(ip) {
		return fmt.Errorf("%w: %s", ErrInternalHost, ip)
	}
	return nil
}

// checkCallbackRedirect applies ValidateCallbackURL to every redirect hop.
func checkCallbackRedirect(req *http.Request, via []*http.Request) error {
	if len(via) >= maxCallbackRedirects {
		return fmt.Errorf("stopped after %d redirects", maxCallbackRedirects)
	}
	if err := ValidateCallbackURL(req.URL.String()); err != nil {
		return fmt.Errorf("redirect refused: %w", err)
	}
	return nil
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast()
}
