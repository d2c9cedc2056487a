package events

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/emergency_dispatch/internal/config"
	"github.com/sirupsen/logrus"
)

// WebhookWorker забирает события из очереди Redis и доставляет их на webhook
type WebhookWorker struct {
	redisClient *redis.Client
	logger      *logrus.Logger
	cfg         *config.Config
	httpClient  *http.Client
}

// NewWebhookWorker создает новый WebhookWorker
func NewWebhookWorker(redisClient *redis.Client, logger *logrus.Logger, cfg *config.Config) *WebhookWorker {
	return &WebhookWorker{
		redisClient: redisClient,
		logger:      logger,
		cfg:         cfg,
		httpClient: &http.Client{
			Timeout: cfg.WebhookTimeout,
		},
	}
}

// Run обрабатывает очередь до отмены контекста
func (w *WebhookWorker) Run(ctx context.Context) error {
	w.logger.Info("Starting webhook worker...")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Stopping webhook worker.")
			return nil
		default:
		}

		// BRPOP с таймаутом, чтобы периодически проверять контекст
		result, err := w.redisClient.BRPop(ctx, time.Second, eventQueueKey).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || errors.Is(err, context.Canceled) {
				continue
			}
			w.logger.WithError(err).Error("Failed to pop dispatch event from Redis")
			select {
			case <-ctx.Done():
			case <-time.After(w.cfg.WebhookTimeout):
			}
			continue
		}

		// result[0] - ключ, result[1] - значение
		payload := result[1]
		var event DispatchEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			w.logger.WithError(err).Error("Failed to unmarshal dispatch event from Redis")
			continue
		}

		if err := w.deliver(ctx, event, payload); err != nil {
			w.logger.WithError(err).WithField("event_type", event.Type).Error("Failed to deliver webhook")
		}
	}
}

func (w *WebhookWorker) deliver(ctx context.Context, event DispatchEvent, rawPayload string) error {
	log := w.logger.WithField("event_type", event.Type).WithField("event_status", event.Status)
	log.Debug("Processing dispatch event...")

	if w.cfg.WebhookURL == "" {
		log.Warn("Webhook URL is not configured. Skipping webhook delivery.")
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = w.cfg.WebhookBaseDelay

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, w.send(ctx, rawPayload)
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(max(w.cfg.WebhookMaxRetries, 1))),
		backoff.WithNotify(func(err error, next time.Duration) {
			log.WithError(err).Warnf("Webhook delivery failed. Retrying in %v", next)
		}),
	)
	if err != nil {
		return fmt.Errorf("webhook delivery gave up: %w", err)
	}
	log.Info("Webhook delivered successfully.")
	return nil
}

func (w *WebhookWorker) send(ctx context.Context, rawPayload string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.WebhookURL, bytes.NewBufferString(rawPayload))
	if err != nil {
		return backoff.Permanent(fmt.Errorf("failed to create webhook request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	// Добавляем HMAC подпись, если WEBHOOK_SECRET задан
	if w.cfg.WebhookSecret != "" {
		req.Header.Set("X-Webhook-Signature", Sign(rawPayload, w.cfg.WebhookSecret))
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
		return backoff.Permanent(fmt.Errorf("webhook rejected event with status %d", resp.StatusCode))
	}
	return fmt.Errorf("webhook responded with status %d", resp.StatusCode)
}

// Sign генерирует HMAC-SHA256 подпись для данных
func Sign(data, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(data))
	return hex.EncodeToString(h.Sum(nil))
}
