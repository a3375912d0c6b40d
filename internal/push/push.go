// Package push delivers web push notifications and runs the scheduled
// reminder pass.
package push

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dukerupert/touchline/internal/model"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// OutcomeKind classifies a single delivery attempt.
type OutcomeKind int

const (
	Delivered OutcomeKind = iota
	EndpointGone
	TransientFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case Delivered:
		return "delivered"
	case EndpointGone:
		return "gone"
	default:
		return "failed"
	}
}

// Outcome is the result of delivering one payload to one subscription.
// Err is set for TransientFailure and, when known, EndpointGone.
type Outcome struct {
	Kind OutcomeKind
	Err  error
}

// Payload is the JSON sent to the push service.
type Payload struct {
	Title string      `json:"title"`
	Body  string      `json:"body"`
	Tag   string      `json:"tag,omitempty"`
	Data  PayloadData `json:"data"`
}

type PayloadData struct {
	URL string `json:"url,omitempty"`
}

// Sender delivers a payload to one subscription.
type Sender interface {
	Deliver(ctx context.Context, sub model.PushSubscription, p Payload) Outcome
}

// Config holds VAPID configuration.
type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subject         string
	TTL             int
	HTTPClient      webpush.HTTPClient
}

// Service sends web push notifications with VAPID authentication.
type Service struct {
	cfg Config
}

func NewService(cfg Config) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = 86400
	}
	if cfg.Subject == "" {
		cfg.Subject = "mailto:noreply@touchline.app"
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Service{cfg: cfg}
}

// VAPIDPublicKey returns the VAPID public key for client-side subscription.
func (s *Service) VAPIDPublicKey() string {
	return s.cfg.VAPIDPublicKey
}

// Enabled reports whether VAPID keys are configured.
func (s *Service) Enabled() bool {
	return s.cfg.VAPIDPublicKey != "" && s.cfg.VAPIDPrivateKey != ""
}

// Deliver sends p to sub and classifies the result.
func (s *Service) Deliver(ctx context.Context, sub model.PushSubscription, p Payload) Outcome {
	data, err := json.Marshal(p)
	if err != nil {
		return Outcome{Kind: TransientFailure, Err: fmt.Errorf("marshal payload: %w", err)}
	}

	resp, err := webpush.SendNotificationWithContext(ctx, data, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dhKey,
			Auth:   sub.AuthKey,
		},
	}, &webpush.Options{
		HTTPClient:      s.cfg.HTTPClient,
		VAPIDPublicKey:  s.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: s.cfg.VAPIDPrivateKey,
		Subscriber:      s.cfg.Subject,
		TTL:             s.cfg.TTL,
		Urgency:         webpush.UrgencyNormal,
	})
	if err != nil {
		return Outcome{Kind: TransientFailure, Err: fmt.Errorf("send push: %w", err)}
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return classifyStatus(resp.StatusCode)
}

func classifyStatus(code int) Outcome {
	switch {
	case code == http.StatusGone || code == http.StatusNotFound:
		return Outcome{Kind: EndpointGone, Err: fmt.Errorf("push service returned %d", code)}
	case code >= 400:
		return Outcome{Kind: TransientFailure, Err: fmt.Errorf("push service returned %d", code)}
	default:
		return Outcome{Kind: Delivered}
	}
}

// GenerateVAPIDKeys generates a new P-256 key pair for VAPID, both
// base64url encoded.
func GenerateVAPIDKeys() (publicKey, privateKey string, err error) {
	privateKey, publicKey, err = webpush.GenerateVAPIDKeys()
	if err != nil {
		return "", "", fmt.Errorf("generate VAPID keys: %w", err)
	}
	return publicKey, privateKey, nil
}
