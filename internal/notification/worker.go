package notification

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"pitboss-backend/internal/model"
	"pitboss-backend/internal/rotation"
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

// WorkerPool fans rotation-expiry alerts out to supervisor push
// subscriptions without blocking the monitor's poll loop.
type WorkerPool struct {
	size    int
	jobs    chan rotation.Alert
	db      *gorm.DB
	webpush *webpush.Options
	sender  Sender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan rotation.Alert, size),
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
	log.Printf("Alert worker %d started", id)
	for {
		select {
		case alert := <-wp.jobs:
			log.Printf("Alert worker %d processing alert for table %s", id, alert.TableNumber)
			wp.sendAlertsForTable(ctx, alert)
		case <-ctx.Done():
			log.Printf("Alert worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues an alert for delivery.
func (wp *WorkerPool) Dispatch(alert rotation.Alert) {
	wp.jobs <- alert
}

// sendAlertsForTable pushes one alert to every subscription covering
// the table's work area (empty area subscriptions cover the floor).
func (wp *WorkerPool) sendAlertsForTable(ctx context.Context, alert rotation.Alert) {
	var subscriptions []model.PushSubscription
	err := wp.db.WithContext(ctx).
		Where("area = ? OR area = ?", "", alert.Area).
		Find(&subscriptions).Error
	if err != nil {
		log.Printf("Error fetching subscriptions for table %s: %v", alert.TableNumber, err)
		return
	}

	if len(subscriptions) == 0 {
		return
	}

	dealerLabel := alert.DealerID
	var dealer model.Dealer
	if err := wp.db.WithContext(ctx).
		Select("name").
		First(&dealer, "id = ?", alert.DealerID).Error; err != nil {
		log.Printf("Error fetching dealer %s: %v", alert.DealerID, err)
	} else if dealer.Name != "" {
		dealerLabel = dealer.Name
	}

	log.Printf("Sending %d alerts for table %s", len(subscriptions), alert.TableNumber)

	message := fmt.Sprintf("Table %s: dealer %s is past the rotation limit, auto-rotation at %s",
		alert.TableNumber, dealerLabel, alert.Deadline.Format("15:04:05"))
	for _, sub := range subscriptions {
		wp.sendNotification(ctx, sub, []byte(message))
	}
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == 410 {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
