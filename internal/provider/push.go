package provider

import (
	"context"
	"fmt"

	"bachat_backend/internal/model"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// fcmBatchSize is the multicast ceiling enforced by FCM.
const fcmBatchSize = 500

type multicastSender interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// FCMPusher sends notifications through Firebase Cloud Messaging.
type FCMPusher struct {
	client multicastSender
}

// NewFCMPusher initialises a Firebase app from a service account file.
func NewFCMPusher(ctx context.Context, credentialsFile string) (*FCMPusher, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase messaging: %w", err)
	}
	return &FCMPusher{client: client}, nil
}

// Send multicasts msg to every token, batching as needed, and sums per-token outcomes.
func (p *FCMPusher) Send(ctx context.Context, msg model.PushMessage) (*model.PushResult, error) {
	notification := &messaging.Notification{Title: msg.Title, Body: msg.Body, ImageURL: msg.ImageURL}

	result := &model.PushResult{}
	for start := 0; start < len(msg.Tokens); start += fcmBatchSize {
		end := min(start+fcmBatchSize, len(msg.Tokens))
		br, err := p.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens:       msg.Tokens[start:end],
			Notification: notification,
		})
		if err != nil {
			return nil, fmt.Errorf("fcm multicast: %w", err)
		}
		result.SuccessCount += br.SuccessCount
		result.FailureCount += br.FailureCount
	}
	return result, nil
}
