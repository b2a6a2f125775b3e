package notification

import (
	"context"
	"fmt"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"waitlist-backend/internal/model"
)

// Sender defines the interface for sending a web push notification.
type Sender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is the real Sender backed by the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Arrival is one unit of work: a party that just joined the waitlist. The
// payload is carried in the job itself so a customer seated before the
// worker runs is still announced correctly.
type Arrival struct {
	CustomerID uint
	Name       string
	PartySize  int
}

// WorkerPool fans arrival announcements out to every registered admin push
// subscription.
type WorkerPool struct {
	size    int
	jobs    chan Arrival
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Arrival, size),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	logrus.Debugf("notification worker %d started", id)
	for {
		select {
		case arrival := <-wp.jobs:
			wp.announce(ctx, arrival)
		case <-ctx.Done():
			logrus.Debugf("notification worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues an arrival for announcement. It never blocks the intake
// path: if the pool is saturated the announcement is dropped.
func (wp *WorkerPool) Dispatch(arrival Arrival) {
	select {
	case wp.jobs <- arrival:
	default:
		logrus.Warnf("notification pool saturated, dropping announcement for customer %d", arrival.CustomerID)
	}
}

// announce sends the arrival to every registered subscription.
func (wp *WorkerPool) announce(ctx context.Context, arrival Arrival) {
	var subscriptions []model.PushSubscription
	if err := wp.db.WithContext(ctx).Find(&subscriptions).Error; err != nil {
		logrus.Errorf("failed to fetch push subscriptions: %v", err)
		return
	}
	if len(subscriptions) == 0 {
		return
	}

	payload := []byte(fmt.Sprintf("%s (party of %d) joined the waitlist", arrival.Name, arrival.PartySize))
	for _, sub := range subscriptions {
		wp.send(ctx, sub, payload)
	}
}

func (wp *WorkerPool) send(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		logrus.Errorf("failed to push to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		logrus.Infof("subscription %s expired, deleting", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			logrus.Errorf("failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
