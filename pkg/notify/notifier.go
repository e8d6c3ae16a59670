// Package notify defines the delivery-channel contract consumed by the
// notification actions. Concrete channels (email, telegram) live in
// subpackages; the engine itself never depends on a specific transport.
package notify

import (
	"context"
	"sync"

	"github.com/haldesk/haldesk/pkg/models"
)

// Message is one rendered notification ready for delivery.
type Message struct {
	Subject string `json:"subject,omitempty"`
	Body    string `json:"body"`
}

// Notifier delivers a message to a single recipient. Implementations must
// treat delivery failure as a normal error return; the action pipeline
// records it and continues.
type Notifier interface {
	Notify(ctx context.Context, recipient *models.User, message Message) error
}

// Recorder is a Notifier that captures deliveries for tests.
type Recorder struct {
	mu         sync.Mutex
	deliveries []Delivery
	fail       bool
}

// Delivery is one recorded notification.
type Delivery struct {
	Recipient *models.User
	Message   Message
}

// NewRecorder creates a recording notifier.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// FailNext makes every subsequent delivery return an error.
func (r *Recorder) FailNext() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.fail = true
}

// Notify records the delivery.
func (r *Recorder) Notify(_ context.Context, recipient *models.User, message Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fail {
		return ErrDeliveryFailed
	}

	r.deliveries = append(r.deliveries, Delivery{Recipient: recipient, Message: message})

	return nil
}

// Deliveries returns everything recorded so far.
func (r *Recorder) Deliveries() []Delivery {
	r.mu.Lock()
	defer r.mu.Unlock()

	deliveries := make([]Delivery, len(r.deliveries))
	copy(deliveries, r.deliveries)

	return deliveries
}
