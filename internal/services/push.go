package services

import (
	"context"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// PushSender delivers a device notification to an FCM registration token.
type PushSender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// PushService handles sending push notifications via Firebase Cloud Messaging
type PushService struct {
	client *messaging.Client
}

// NewPushService initializes the Firebase push notification service.
// Without a service account it returns a disabled service (dev mode).
func NewPushService(ctx context.Context, serviceAccountPath string) *PushService {
	if serviceAccountPath == "" {
		slog.Info("FCM: no service account configured, push notifications disabled")
		return &PushService{}
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(serviceAccountPath))
	if err != nil {
		slog.Error("FCM: failed to initialize Firebase app", slog.Any("error", err))
		return &PushService{}
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		slog.Error("FCM: failed to get messaging client", slog.Any("error", err))
		return &PushService{}
	}

	slog.Info("FCM: push notifications enabled")
	return &PushService{client: client}
}

// Send is a no-op when push is disabled or the user never registered a device.
func (p *PushService) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	if p.client == nil || token == "" {
		return nil
	}

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	_, err := p.client.Send(ctx, msg)
	return err
}
