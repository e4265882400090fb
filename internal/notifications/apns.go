// Package notifications delivers APNs alert pushes for social-graph events.
// Delivery is fail-soft: a push that cannot be sent is logged and dropped.
package notifications

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/certificate"
	"github.com/sideshow/apns2/payload"
)

// Config holds APNs settings. An empty CertPath disables pushes entirely.
type Config struct {
	CertPath     string `yaml:"cert_path"`
	CertPassword string `yaml:"cert_password"`
	Topic        string `yaml:"topic"`
	Production   bool   `yaml:"production"`
}

// PushNotifier sends APNs alerts to registered device tokens.
type PushNotifier struct {
	client *apns2.Client
	topic  string
}

// New creates a push notifier. When no certificate is configured the
// notifier is a logged no-op so the rest of the service keeps working.
func New(cfg Config) (*PushNotifier, error) {
	if cfg.CertPath == "" {
		log.Info().Msg("APNs certificate not configured, push notifications disabled")
		return &PushNotifier{}, nil
	}

	cert, err := certificate.FromP12File(cfg.CertPath, cfg.CertPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs certificate: %w", err)
	}

	client := apns2.NewClient(cert).Development()
	if cfg.Production {
		client = apns2.NewClient(cert).Production()
	}

	return &PushNotifier{client: client, topic: cfg.Topic}, nil
}

// Enabled reports whether pushes will actually be sent.
func (n *PushNotifier) Enabled() bool {
	return n != nil && n.client != nil
}

// Send delivers an alert push to deviceToken. Errors are logged, never
// returned; push delivery must not affect the triggering operation.
func (n *PushNotifier) Send(deviceToken, alert string) {
	if !n.Enabled() || deviceToken == "" {
		return
	}

	notification := &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       n.topic,
		Payload:     payload.NewPayload().Alert(alert).Sound("default"),
	}

	res, err := n.client.Push(notification)
	if err != nil {
		log.Error().Err(err).Msg("Failed to send push notification")
		return
	}
	if !res.Sent() {
		log.Warn().Str("reason", res.Reason).Int("status", res.StatusCode).Msg("Push notification rejected")
	}
}
