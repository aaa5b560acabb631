package gemini

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/edgard/lifesync/internal/config"
	"github.com/edgard/lifesync/internal/retry"
)

// Outcome classifies one request attempt.
type Outcome string

const (
	OutcomeSuccess    Outcome = "success"
	OutcomeOverloaded Outcome = "overloaded"
	OutcomeRejected   Outcome = "rejected"
	OutcomeTransport  Outcome = "transport_error"
	OutcomeEmpty      Outcome = "empty_response"
)

// Attempt records one request to one model.
type Attempt struct {
	Model   string  `json:"model"`
	Number  int     `json:"attempt"`
	Outcome Outcome `json:"outcome"`
	Status  int     `json:"status,omitempty"`
}

// Reply is the detailed result of a dietitian question.
type Reply struct {
	Text     string    `json:"response"`
	Model    string    `json:"model,omitempty"`
	Degraded bool      `json:"degraded"`
	Attempts []Attempt `json:"attempts"`
}

// Asker is what callers of the dietitian depend on.
type Asker interface {
	Ask(ctx context.Context, message string) string
	AskDetailed(ctx context.Context, message string) Reply
}

// Dietitian answers health questions through a list of models, falling
// back to a fixed advisory text when none of them answers. It is safe for
// concurrent use.
type Dietitian struct {
	gen     Generator
	models  []string
	timeout time.Duration
	policy  retry.Policy
	log     *slog.Logger
}

// NewDietitian builds a dietitian over gen. A nil gen means the API key is
// missing: every question gets the fallback without network calls.
func NewDietitian(gen Generator, cfg config.GeminiConfig, clock clockwork.Clock, log *slog.Logger) *Dietitian {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := log.With("component", "dietitian")
	if gen == nil {
		logger.Error("Gemini API key is not configured, dietitian will only return fallback advice", "misconfiguration", true)
	}

	d := &Dietitian{
		gen:     gen,
		models:  cfg.Models,
		timeout: cfg.Timeout,
		log:     logger,
	}
	d.policy = retry.Policy{
		MaxAttempts: cfg.Attempts,
		Backoff:     retry.Linear{Step: cfg.BackoffStep, Jitter: cfg.BackoffJitter},
		Delay:       cfg.RetryDelay,
		Classify:    classify,
		Clock:       clock,
	}
	return d
}

// MaxWait is the longest the dietitian can spend sleeping between attempts
// across all models.
func (d *Dietitian) MaxWait() time.Duration {
	return time.Duration(len(d.models)) * d.policy.MaxWait()
}

// Ask returns the reply text. It never fails.
func (d *Dietitian) Ask(ctx context.Context, message string) string {
	return d.AskDetailed(ctx, message).Text
}

// AskDetailed tries each model in order and returns the first answer, or the
// fallback text with Degraded set.
func (d *Dietitian) AskDetailed(ctx context.Context, message string) Reply {
	reply := Reply{Attempts: []Attempt{}}
	if d.gen == nil {
		return d.fallback(ctx, reply, "no API key")
	}

	prompt := BuildPrompt(message)
	for _, model := range d.models {
		if ctx.Err() != nil {
			break
		}

		log := d.log.With("model", model)
		policy := d.policy
		policy.OnRetry = func(attempt int, err error, wait time.Duration) {
			log.InfoContext(ctx, "Retrying Gemini request", "attempt", attempt, "wait", wait, "error", err)
		}

		var text string
		_, err := policy.Do(ctx, func(ctx context.Context, attempt int) error {
			actx, cancel := context.WithTimeout(ctx, d.timeout)
			defer cancel()

			out, err := d.gen.Generate(actx, model, prompt)
			if err == nil && strings.TrimSpace(out) == "" {
				err = ErrEmptyResponse
			}
			reply.Attempts = append(reply.Attempts, d.record(ctx, log, model, attempt, err))
			if err != nil {
				return err
			}
			text = out
			return nil
		})
		if err == nil {
			reply.Text = text
			reply.Model = model
			return reply
		}
		log.WarnContext(ctx, "Giving up on Gemini model", "error", err)
	}

	reason := "all models failed"
	if ctx.Err() != nil {
		reason = "canceled"
	}
	return d.fallback(ctx, reply, reason)
}

func (d *Dietitian) fallback(ctx context.Context, reply Reply, reason string) Reply {
	d.log.WarnContext(ctx, "Returning fallback advice", "reason", reason, "attempts", len(reply.Attempts))
	reply.Text = FallbackReply
	reply.Degraded = true
	return reply
}

func (d *Dietitian) record(ctx context.Context, log *slog.Logger, model string, n int, err error) Attempt {
	a := Attempt{Model: model, Number: n, Outcome: OutcomeSuccess}
	if err == nil {
		log.DebugContext(ctx, "Gemini request succeeded", "attempt", n)
		return a
	}

	var se *StatusError
	switch {
	case errors.As(err, &se):
		a.Status = se.Code
		if se.Code == http.StatusServiceUnavailable {
			a.Outcome = OutcomeOverloaded
			log.WarnContext(ctx, "Gemini model overloaded", "attempt", n, "status", se.Code)
		} else {
			a.Outcome = OutcomeRejected
			if isMisconfiguration(se.Code) {
				log.ErrorContext(ctx, "Gemini rejected the request, check API key and model name",
					"attempt", n, "status", se.Code, "misconfiguration", true, "error", se.Message)
			} else {
				log.WarnContext(ctx, "Gemini request failed", "attempt", n, "status", se.Code, "error", se.Message)
			}
		}
	case errors.Is(err, ErrEmptyResponse):
		a.Outcome = OutcomeEmpty
		log.WarnContext(ctx, "Gemini returned no text", "attempt", n, "error", err)
	default:
		a.Outcome = OutcomeTransport
		log.WarnContext(ctx, "Gemini request error", "attempt", n, "error", err)
	}
	return a
}

func isMisconfiguration(code int) bool {
	switch code {
	case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
		return true
	}
	return false
}

func classify(err error) retry.Action {
	var se *StatusError
	if errors.As(err, &se) {
		if se.Code == http.StatusServiceUnavailable {
			return retry.RetryAfterBackoff
		}
		return retry.Abort
	}
	return retry.RetryAfterDelay
}
