// Package push wraps Firebase Cloud Messaging behind a small gateway
// interface so notification logic can be tested without FCM.
package push

import (
	"context"
	"errors"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// ErrUnregistered marks a token FCM reports as permanently invalid.
// A token carrying this error will never accept deliveries again and
// should be pruned from the registry.
var ErrUnregistered = errors.New("push token is not registered")

// IsUnregistered reports whether err signals permanent token invalidity.
func IsUnregistered(err error) bool {
	return errors.Is(err, ErrUnregistered)
}

// Notification is the visible part of a push message.
type Notification struct {
	Title string
	Body  string
}

// Message is one push delivery to one device token.
type Message struct {
	Token        string
	Notification Notification
	Data         map[string]string
}

// Gateway is the delivery interface the notifiers depend on.
type Gateway interface {
	// CheckValidity probes a token without delivering anything.
	// An unregistered token yields (false, nil); any other gateway
	// failure yields (false, err) so callers can log the distinction.
	CheckValidity(ctx context.Context, token string) (bool, error)

	// Send delivers one message and returns the gateway message id.
	// A permanently invalid token yields an error satisfying
	// IsUnregistered.
	Send(ctx context.Context, msg Message) (string, error)
}

// fcmGateway is the production Gateway backed by an FCM messaging client.
type fcmGateway struct {
	client *messaging.Client
}

// NewFCMGateway creates a gateway from a service account credentials file.
func NewFCMGateway(ctx context.Context, credentialsFile string) (Gateway, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	return &fcmGateway{client: client}, nil
}

func (g *fcmGateway) CheckValidity(ctx context.Context, token string) (bool, error) {
	// A dry-run send validates the token end to end without delivering.
	_, err := g.client.SendDryRun(ctx, &messaging.Message{Token: token})
	if err != nil {
		if messaging.IsRegistrationTokenNotRegistered(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (g *fcmGateway) Send(ctx context.Context, msg Message) (string, error) {
	id, err := g.client.Send(ctx, &messaging.Message{
		Token: msg.Token,
		Notification: &messaging.Notification{
			Title: msg.Notification.Title,
			Body:  msg.Notification.Body,
		},
		Data: msg.Data,
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: msg.Notification.Title,
				Body:  msg.Notification.Body,
			},
		},
	})
	if err != nil {
		if messaging.IsRegistrationTokenNotRegistered(err) {
			return "", fmt.Errorf("%w: %v", ErrUnregistered, err)
		}
		return "", fmt.Errorf("failed to send FCM message: %w", err)
	}
	return id, nil
}
