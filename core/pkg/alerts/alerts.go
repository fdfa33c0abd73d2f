// Package alerts composes SMS alerts for farmers and hands them to the SMS gateway topic.
package alerts

import (
	"errors"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/agroguard/agroguard/core/pkg/contracts"
	"github.com/google/uuid"
)

// Type is the kind of alert
type Type string

const (
	TypeDrought  Type = "drought"
	TypePest     Type = "pest"
	TypeWeather  Type = "weather"
	TypePlanting Type = "planting"
	TypeHarvest  Type = "harvest"
)

// TypeInfo describes an alert type for display
type TypeInfo struct {
	Value Type
	Label string
	Icon  string
}

// Types lists the alert types in display order
var Types = []TypeInfo{
	{TypeDrought, "Drought Warning", "🌤"},
	{TypePest, "Pest Alert", "🐛"},
	{TypeWeather, "Weather Update", "🌧"},
	{TypePlanting, "Planting Advisory", "🌱"},
	{TypeHarvest, "Harvest Time", "🌾"},
}

// Info returns the display info for t
func (t Type) Info() (TypeInfo, bool) {
	for _, info := range Types {
		if info.Value == t {
			return info, true
		}
	}
	return TypeInfo{}, false
}

// Priority orders alerts for the SMS gateway
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Status is the delivery state of an alert
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

const (
	// AllCrops targets every farmer in the district
	AllCrops = "All Crops"

	// MaxMessageLength is the single-segment SMS limit in UTF-16 code units
	MaxMessageLength = 160
)

// Draft is the alert form as filled in by an operator
type Draft struct {
	Type     string `json:"type" validate:"required,oneof=drought pest weather planting harvest"`
	Priority string `json:"priority" validate:"omitempty,oneof=high medium low"`
	District string `json:"district" validate:"notblank"`
	Crop     string `json:"crop"`
	Message  string `json:"message" validate:"notblank,maxutf16=160"`
}

// Alert is a composed alert and its delivery outcome
type Alert struct {
	ID        string    `json:"id" yaml:"id"`
	Type      Type      `json:"type" yaml:"type"`
	Priority  Priority  `json:"priority" yaml:"priority"`
	District  string    `json:"district" yaml:"district"`
	Crop      string    `json:"crop" yaml:"crop"`
	Message   string    `json:"message" yaml:"message"`
	SentTo    int       `json:"sentTo" yaml:"sentTo"`
	Status    Status    `json:"status" yaml:"status"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}

// Composer validates drafts and fills in defaults
type Composer struct {
	v     contracts.Validator
	now   func() time.Time
	newID func() string
}

// NewComposer binds the alert messages onto v
func NewComposer(v contracts.Validator) (*Composer, error) {
	messages := map[[2]string]string{
		{"type", "required"}:     "Alert type is required",
		{"type", "oneof"}:        "Alert type must be one of: drought, pest, weather, planting, harvest",
		{"priority", "oneof"}:    "Priority must be one of: high, medium, low",
		{"district", "notblank"}: "District is required",
		{"message", "notblank"}:  "Message is required",
		{"message", "maxutf16"}:  "Message must be at most 160 characters for SMS",
	}
	for k, msg := range messages {
		if err := v.RegisterFieldTranslation(k[0], k[1], msg); err != nil {
			return nil, err
		}
	}
	return &Composer{
		v:     v,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}, nil
}

// Compose turns a draft into a pending alert. Priority defaults to medium
// and an empty crop targets AllCrops.
func (c *Composer) Compose(d Draft) (Alert, error) {
	d.Type = strings.ToLower(contracts.TrimBlank(d.Type))
	d.Priority = strings.ToLower(contracts.TrimBlank(d.Priority))
	d.District = contracts.TrimBlank(d.District)
	d.Crop = contracts.TrimBlank(d.Crop)
	d.Message = contracts.TrimBlank(d.Message)

	if err := c.v.Validate(d); err != nil {
		var verrs contracts.ValidationErrors
		if errors.As(err, &verrs) {
			return Alert{}, verrs
		}
		return Alert{}, err
	}

	a := Alert{
		ID:        c.newID(),
		Type:      Type(d.Type),
		Priority:  Priority(d.Priority),
		District:  d.District,
		Crop:      d.Crop,
		Message:   d.Message,
		Status:    StatusPending,
		Timestamp: c.now().UTC(),
	}
	if a.Priority == "" {
		a.Priority = PriorityMedium
	}
	if a.Crop == "" {
		a.Crop = AllCrops
	}
	return a, nil
}

// FitMessage cuts message to MaxMessageLength UTF-16 code units without
// splitting a surrogate pair.
func FitMessage(message string) string {
	message = contracts.TrimBlank(message)
	n := 0
	for i, r := range message {
		n += utf16.RuneLen(r)
		if n > MaxMessageLength {
			return message[:i]
		}
	}
	return message
}
