package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/agroguard/agroguard/core/pkg/contracts"
	"github.com/agroguard/agroguard/core/pkg/registration"
	"github.com/google/uuid"
)

// DefaultTopic is the broker topic consumed by the SMS gateway
const DefaultTopic = "agroguard.sms.outbound"

// recordTimeout bounds the history write, which runs even after ctx expired
const recordTimeout = 5 * time.Second

// Directory lists the farmers that can receive alerts
type Directory interface {
	ListFarmers(ctx context.Context) ([]registration.Farmer, error)
}

// History records dispatched alerts
type History interface {
	RecordAlert(ctx context.Context, a Alert) error
	RecentAlerts(ctx context.Context, limit int) ([]Alert, error)
}

// SMS is one outbound message as published for the gateway
type SMS struct {
	AlertID  string                `json:"alertId"`
	To       string                `json:"to"`
	Name     string                `json:"name"`
	Language registration.Language `json:"language"`
	Priority Priority              `json:"priority"`
	Body     string                `json:"body"`
}

// Recipients returns the active farmers targeted by a, one per phone number
func Recipients(farmers []registration.Farmer, a Alert) []registration.Farmer {
	seen := make(map[string]bool)
	var out []registration.Farmer
	for _, f := range farmers {
		if f.Status != registration.StatusActive {
			continue
		}
		if !strings.EqualFold(f.District, a.District) {
			continue
		}
		if a.Crop != AllCrops && !strings.EqualFold(f.Crop, a.Crop) {
			continue
		}
		phone := registration.FormatPhoneNumber(f.Phone)
		if phone == "" || seen[phone] {
			continue
		}
		seen[phone] = true
		out = append(out, f)
	}
	return out
}

// Dispatcher publishes alerts to the SMS topic
type Dispatcher struct {
	broker    contracts.Broker
	topic     string
	directory Directory
	history   History
	logger    contracts.Logger
}

// NewDispatcher creates a dispatcher. history may be nil.
func NewDispatcher(broker contracts.Broker, topic string, directory Directory, history History, logger contracts.Logger) *Dispatcher {
	if topic == "" {
		topic = DefaultTopic
	}
	if logger == nil {
		logger = contracts.NopLogger{}
	}
	return &Dispatcher{
		broker:    broker,
		topic:     topic,
		directory: directory,
		history:   history,
		logger:    logger.Named("alerts"),
	}
}

// Send fans a out to every recipient and records the outcome.
// The returned alert carries the final status even when err is non-nil.
func (d *Dispatcher) Send(ctx context.Context, a Alert) (Alert, error) {
	log := d.logger.WithFields("alert_id", a.ID, "district", a.District, "crop", a.Crop)

	farmers, err := d.directory.ListFarmers(ctx)
	if err != nil {
		a.Status = StatusFailed
		d.record(ctx, a)
		return a, fmt.Errorf("list farmers: %w", err)
	}

	recipients := Recipients(farmers, a)
	msgs := make([]*contracts.BrokerMessage, 0, len(recipients))
	for _, f := range recipients {
		msg, err := d.message(a, f)
		if err != nil {
			a.Status = StatusFailed
			d.record(ctx, a)
			return a, err
		}
		msgs = append(msgs, msg)
	}

	if len(msgs) > 0 {
		if err := d.broker.PublishBatch(ctx, d.topic, msgs); err != nil {
			log.WithError(err).Error("publish failed")
			a.Status = StatusFailed
			d.record(ctx, a)
			return a, fmt.Errorf("publish alert %s: %w", a.ID, err)
		}
	} else {
		log.Warn("no farmers match alert")
	}

	a.SentTo = len(msgs)
	a.Status = StatusSent
	log.Info("alert sent", "sent_to", a.SentTo)
	d.record(ctx, a)
	return a, nil
}

func (d *Dispatcher) message(a Alert, f registration.Farmer) (*contracts.BrokerMessage, error) {
	phone := registration.FormatPhoneNumber(f.Phone)
	body, err := json.Marshal(SMS{
		AlertID:  a.ID,
		To:       phone,
		Name:     f.Name,
		Language: f.Language,
		Priority: a.Priority,
		Body:     a.Message,
	})
	if err != nil {
		return nil, fmt.Errorf("encode sms: %w", err)
	}
	return &contracts.BrokerMessage{
		ID:   uuid.NewString(),
		Key:  []byte(phone),
		Body: body,
		Headers: map[string]string{
			"alert-id":   a.ID,
			"alert-type": string(a.Type),
			"priority":   string(a.Priority),
		},
	}, nil
}

func (d *Dispatcher) record(ctx context.Context, a Alert) {
	if d.history == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := d.history.RecordAlert(ctx, a); err != nil {
		d.logger.WithError(err).Warn("record alert history", "alert_id", a.ID)
	}
}
