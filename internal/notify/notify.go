package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Khodkerutuja/WaitlistWizard/internal/booking"
	"github.com/Khodkerutuja/WaitlistWizard/internal/logger"
	"github.com/Khodkerutuja/WaitlistWizard/internal/metrics"
	"github.com/Khodkerutuja/WaitlistWizard/internal/service"
)

const (
	queueKey       = "notifications"
	failedQueueKey = "notifications:failed"
	inboxPrefix    = "inbox:"

	maxTries  = 3
	inboxSize = 100
)

type Job struct {
	UserID  int       `json:"user_id"`
	Event   string    `json:"event"`
	Message string    `json:"message"`
	Tries   int       `json:"tries"`
	Created time.Time `json:"created"`
}

// Service is the notification pipeline: producers enqueue jobs onto a
// redis list, a worker drains them into per-user inboxes. Delivery is
// at-least-once with a bounded retry; jobs that keep failing land on a
// dead-letter list for inspection.
type Service struct {
	redis *redis.Client
}

func New(redisAddr string) *Service {
	return &Service{
		redis: redis.NewClient(&redis.Options{
			Addr: redisAddr,
		}),
	}
}

// NewWithClient is used by tests to inject a mock client.
func NewWithClient(client *redis.Client) *Service {
	return &Service{redis: client}
}

func (s *Service) Enqueue(ctx context.Context, userID int, event, message string) error {
	job := Job{
		UserID:  userID,
		Event:   event,
		Message: message,
		Created: time.Now(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		logger.Errorf("Failed to marshal notification job: %v", err)
		return err
	}

	if err := s.redis.LPush(ctx, queueKey, string(data)).Err(); err != nil {
		logger.Errorf("Failed to queue %s notification for user %d: %v", event, userID, err)
		return err
	}

	metrics.RecordNotification(event)
	logger.Infof("Notification queued: %s for user %d", event, userID)
	return nil
}

func (s *Service) Start(ctx context.Context) {
	logger.Info("Notification worker started")

	for {
		select {
		case <-ctx.Done():
			logger.Info("Notification worker stopped")
			return
		default:
			s.processNext(ctx)
		}
	}
}

func (s *Service) processNext(ctx context.Context) {
	result, err := s.redis.BRPop(ctx, 2*time.Second, queueKey).Result()
	if err != nil {
		return
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		logger.Errorf("Bad notification data: %v", err)
		return
	}

	job.Tries++
	if err := s.deliver(ctx, job); err != nil {
		logger.Errorf("Failed to deliver %s notification to user %d: %v", job.Event, job.UserID, err)

		if job.Tries < maxTries {
			data, _ := json.Marshal(job)
			s.redis.LPush(context.Background(), queueKey, data)
			return
		}
		s.saveFailed(job, err)
		return
	}

	logger.Infof("Notification delivered: %s to user %d", job.Event, job.UserID)
}

// deliver pushes the rendered notification onto the user's inbox list
// and trims it so an inactive user cannot grow the list without bound.
func (s *Service) deliver(ctx context.Context, job Job) error {
	entry, err := json.Marshal(map[string]interface{}{
		"event":   job.Event,
		"message": job.Message,
		"time":    job.Created,
	})
	if err != nil {
		return err
	}

	key := fmt.Sprintf("%s%d", inboxPrefix, job.UserID)
	pipe := s.redis.TxPipeline()
	pipe.LPush(ctx, key, entry)
	pipe.LTrim(ctx, key, 0, inboxSize-1)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Service) saveFailed(job Job, err error) {
	failed := map[string]interface{}{
		"job":   job,
		"error": err.Error(),
		"time":  time.Now(),
	}
	data, _ := json.Marshal(failed)
	s.redis.LPush(context.Background(), failedQueueKey, data)
	logger.Errorf("Notification moved to failed queue: %s for user %d", job.Event, job.UserID)
}

// Inbox returns the most recent delivered notifications for a user.
func (s *Service) Inbox(ctx context.Context, userID int, limit int64) ([]string, error) {
	if limit <= 0 || limit > inboxSize {
		limit = inboxSize
	}
	key := fmt.Sprintf("%s%d", inboxPrefix, userID)
	return s.redis.LRange(ctx, key, 0, limit-1).Result()
}

func (s *Service) QueueLength(ctx context.Context) int64 {
	length, _ := s.redis.LLen(ctx, queueKey).Result()
	return length
}

func (s *Service) Close() error {
	return s.redis.Close()
}

// BookingNotifier adapts the queue to the booking engine's event hooks.
// Enqueue failures are logged and swallowed: a redis hiccup must never
// fail a committed booking transition.
type BookingNotifier struct {
	svc *Service
}

func NewBookingNotifier(svc *Service) *BookingNotifier {
	return &BookingNotifier{svc: svc}
}

func (n *BookingNotifier) BookingConfirmed(b *booking.Booking, svc *service.Service) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_ = n.svc.Enqueue(ctx, b.ConsumerID, "booking_confirmed",
		fmt.Sprintf("Your booking #%d for %s is confirmed.", b.ID, svc.Name))
	_ = n.svc.Enqueue(ctx, svc.ProviderID, "booking_confirmed",
		fmt.Sprintf("Booking #%d for %s has been paid.", b.ID, svc.Name))
}

func (n *BookingNotifier) BookingCancelled(b *booking.Booking, svc *service.Service) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_ = n.svc.Enqueue(ctx, b.ConsumerID, "booking_cancelled",
		fmt.Sprintf("Your booking #%d for %s was cancelled.", b.ID, svc.Name))
	_ = n.svc.Enqueue(ctx, svc.ProviderID, "booking_cancelled",
		fmt.Sprintf("Booking #%d for %s was cancelled.", b.ID, svc.Name))
}

func (n *BookingNotifier) BookingRejected(b *booking.Booking, svc *service.Service) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_ = n.svc.Enqueue(ctx, b.ConsumerID, "booking_rejected",
		fmt.Sprintf("Your booking #%d for %s was rejected by the provider.", b.ID, svc.Name))
}
