package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/agroguard/agroguard/contrib/validator/playground"
	"github.com/agroguard/agroguard/core/pkg/adapters/broker/memory"
	"github.com/agroguard/agroguard/core/pkg/contracts"
	"github.com/agroguard/agroguard/core/pkg/registration"
	"github.com/google/go-cmp/cmp"
)

func newComposer(t *testing.T) *Composer {
	t.Helper()
	c, err := NewComposer(playground.NewDriver())
	if err != nil {
		t.Fatal(err)
	}
	c.now = func() time.Time { return time.Date(2024, 5, 31, 14, 30, 0, 0, time.UTC) }
	c.newID = func() string { return "alert-1" }
	return c
}

func TestCompose_Defaults(t *testing.T) {
	a, err := newComposer(t).Compose(Draft{
		Type:     "Drought",
		District: "Gulu",
		Message:  "🌤 Too dry for maize, delay planting until next week.",
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	want := Alert{
		ID:        "alert-1",
		Type:      TypeDrought,
		Priority:  PriorityMedium,
		District:  "Gulu",
		Crop:      AllCrops,
		Message:   "🌤 Too dry for maize, delay planting until next week.",
		Status:    StatusPending,
		Timestamp: time.Date(2024, 5, 31, 14, 30, 0, 0, time.UTC),
	}
	if diff := cmp.Diff(want, a); diff != "" {
		t.Errorf("alert mismatch (-want +got):\n%s", diff)
	}
}

func TestCompose_Validation(t *testing.T) {
	tests := []struct {
		name  string
		draft Draft
		want  map[string]string
	}{
		{
			name:  "empty",
			draft: Draft{},
			want: map[string]string{
				"type":     "Alert type is required",
				"district": "District is required",
				"message":  "Message is required",
			},
		},
		{
			name:  "unknown type and priority",
			draft: Draft{Type: "flood", Priority: "urgent", District: "Gulu", Message: "x"},
			want: map[string]string{
				"type":     "Alert type must be one of: drought, pest, weather, planting, harvest",
				"priority": "Priority must be one of: high, medium, low",
			},
		},
		{
			name:  "message too long",
			draft: Draft{Type: "pest", District: "Kabale", Message: strings.Repeat("a", MaxMessageLength+1)},
			want:  map[string]string{"message": "Message must be at most 160 characters for SMS"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newComposer(t).Compose(tt.draft)

			var verrs contracts.ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %v", err)
			}
			if diff := cmp.Diff(tt.want, verrs.FirstByField()); diff != "" {
				t.Errorf("errors mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCompose_MessageLimitCountsUTF16(t *testing.T) {
	tests := []struct {
		name    string
		message string
		ok      bool
	}{
		{"160 ascii", strings.Repeat("a", 160), true},
		{"emoji counts twice", "🌤 " + strings.Repeat("a", 157), true},
		{"emoji pushes past the limit", "🌤 " + strings.Repeat("a", 158), false},
		{"80 emoji", strings.Repeat("🌾", 80), true},
		{"81 emoji", strings.Repeat("🌾", 81), false},
		{"surrounding blanks are not counted", "\u00a0 " + strings.Repeat("a", 160) + "\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newComposer(t).Compose(Draft{Type: "harvest", District: "Lira", Message: tt.message})
			if (err == nil) != tt.ok {
				t.Errorf("err = %v, want ok=%v", err, tt.ok)
			}
		})
	}
}

func TestCompose_TrimsUnicodeBlanks(t *testing.T) {
	a, err := newComposer(t).Compose(Draft{Type: "pest", District: "\u00a0Gulu", Message: "\ufeffArmyworm spotted\u2009"})
	if err != nil {
		t.Fatal(err)
	}
	if a.District != "Gulu" || a.Message != "Armyworm spotted" {
		t.Errorf("blanks not trimmed: district %q message %q", a.District, a.Message)
	}

	_, err = newComposer(t).Compose(Draft{Type: "pest", District: "Gulu", Message: "\ufeff"})
	if err == nil {
		t.Error("a message of only U+FEFF should be rejected")
	}
}

func TestFitMessage(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short", "Rain expected", "Rain expected"},
		{"ascii cut", strings.Repeat("a", 170), strings.Repeat("a", 160)},
		{"no split surrogate", strings.Repeat("a", 159) + "🌾b", strings.Repeat("a", 159)},
		{"emoji at the edge", strings.Repeat("a", 158) + "🌾b", strings.Repeat("a", 158) + "🌾"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FitMessage(tt.in); got != tt.want {
				t.Errorf("FitMessage = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTypeInfo(t *testing.T) {
	info, ok := TypePest.Info()
	if !ok || info.Icon != "🐛" {
		t.Errorf("unexpected info %+v", info)
	}
	if _, ok := Type("flood").Info(); ok {
		t.Error("unknown type should have no info")
	}
}

var directory = []registration.Farmer{
	{ID: "F001", Status: registration.StatusActive, Input: registration.Input{Name: "Peter Okello", Phone: "+256 702 345 678", District: "Gulu", Crop: "Beans", Language: registration.LanguageAcholi}},
	{ID: "F002", Status: registration.StatusActive, Input: registration.Input{Name: "Grace Auma", Phone: "256703111222", District: "gulu", Crop: "Maize", Language: registration.LanguageEnglish}},
	{ID: "F003", Status: registration.StatusInactive, Input: registration.Input{Name: "Old Account", Phone: "+256 704 000 000", District: "Gulu", Crop: "Maize"}},
	{ID: "F004", Status: registration.StatusActive, Input: registration.Input{Name: "Grace Auma", Phone: "+256 703 111 222", District: "Gulu", Crop: "Maize"}},
	{ID: "F005", Status: registration.StatusActive, Input: registration.Input{Name: "John Mukasa", Phone: "+256 700 123 456", District: "Kabale", Crop: "Maize"}},
}

func TestRecipients(t *testing.T) {
	ids := func(fs []registration.Farmer) []string {
		var out []string
		for _, f := range fs {
			out = append(out, f.ID)
		}
		return out
	}

	all := Recipients(directory, Alert{District: "Gulu", Crop: AllCrops})
	if diff := cmp.Diff([]string{"F001", "F002"}, ids(all)); diff != "" {
		t.Errorf("all crops mismatch (-want +got):\n%s", diff)
	}

	maize := Recipients(directory, Alert{District: "GULU", Crop: "maize"})
	if diff := cmp.Diff([]string{"F002"}, ids(maize)); diff != "" {
		t.Errorf("maize mismatch (-want +got):\n%s", diff)
	}

	if none := Recipients(directory, Alert{District: "Mbale", Crop: AllCrops}); len(none) != 0 {
		t.Errorf("expected no recipients, got %v", ids(none))
	}
}

type fakeDirectory struct {
	farmers []registration.Farmer
	err     error
	stall   bool
}

func (f fakeDirectory) ListFarmers(ctx context.Context) ([]registration.Farmer, error) {
	if f.stall {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.farmers, f.err
}

type fakeHistory struct {
	alerts []Alert
}

func (h *fakeHistory) RecordAlert(ctx context.Context, a Alert) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.alerts = append(h.alerts, a)
	return nil
}

func (h *fakeHistory) RecentAlerts(_ context.Context, limit int) ([]Alert, error) {
	return h.alerts, nil
}

func TestDispatcher_Send(t *testing.T) {
	ctx := context.Background()
	broker := memory.New()
	_ = broker.Connect(ctx)
	history := &fakeHistory{}

	d := NewDispatcher(broker, "", fakeDirectory{farmers: directory}, history, nil)
	a, err := newComposer(t).Compose(Draft{Type: "pest", Priority: "high", District: "Gulu", Message: "🐛 Fall armyworm reported nearby"})
	if err != nil {
		t.Fatal(err)
	}

	sent, err := d.Send(ctx, a)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sent.Status != StatusSent || sent.SentTo != 2 {
		t.Errorf("unexpected outcome %+v", sent)
	}

	msgs := broker.Messages(DefaultTopic)
	if len(msgs) != 2 {
		t.Fatalf("expected 2 published messages, got %d", len(msgs))
	}

	var sms SMS
	if err := json.Unmarshal(msgs[1].Body, &sms); err != nil {
		t.Fatal(err)
	}
	want := SMS{
		AlertID:  "alert-1",
		To:       "+256 703 111 222",
		Name:     "Grace Auma",
		Language: registration.LanguageEnglish,
		Priority: PriorityHigh,
		Body:     "🐛 Fall armyworm reported nearby",
	}
	if diff := cmp.Diff(want, sms); diff != "" {
		t.Errorf("sms mismatch (-want +got):\n%s", diff)
	}
	if string(msgs[1].Key) != "+256 703 111 222" || msgs[1].Headers["alert-type"] != "pest" {
		t.Errorf("unexpected key/headers %q %v", msgs[1].Key, msgs[1].Headers)
	}

	if len(history.alerts) != 1 || history.alerts[0].Status != StatusSent {
		t.Errorf("history not recorded: %+v", history.alerts)
	}
}

func TestDispatcher_PublishFailure(t *testing.T) {
	ctx := context.Background()
	broker := memory.New() // never connected
	history := &fakeHistory{}

	d := NewDispatcher(broker, "sms", fakeDirectory{farmers: directory}, history, nil)
	a, _ := newComposer(t).Compose(Draft{Type: "weather", District: "Gulu", Message: "Heavy rainfall expected"})

	sent, err := d.Send(ctx, a)
	if !errors.Is(err, memory.ErrNotConnected) {
		t.Fatalf("expected publish error, got %v", err)
	}
	if sent.Status != StatusFailed || sent.SentTo != 0 {
		t.Errorf("unexpected outcome %+v", sent)
	}
	if len(history.alerts) != 1 || history.alerts[0].Status != StatusFailed {
		t.Errorf("failed alert should be recorded: %+v", history.alerts)
	}
}

func TestDispatcher_DirectoryFailure(t *testing.T) {
	ctx := context.Background()
	broker := memory.New()
	_ = broker.Connect(ctx)
	boom := errors.New("backend down")

	d := NewDispatcher(broker, "sms", fakeDirectory{err: boom}, nil, nil)
	a, _ := newComposer(t).Compose(Draft{Type: "harvest", District: "Gulu", Message: "Harvest window opens"})

	sent, err := d.Send(ctx, a)
	if !errors.Is(err, boom) {
		t.Fatalf("expected directory error, got %v", err)
	}
	if sent.Status != StatusFailed {
		t.Errorf("expected failed status, got %s", sent.Status)
	}
	if len(broker.Messages("sms")) != 0 {
		t.Error("nothing should be published")
	}
}

func TestDispatcher_TimeoutRecordsFailure(t *testing.T) {
	broker := memory.New()
	_ = broker.Connect(context.Background())
	history := &fakeHistory{}

	d := NewDispatcher(broker, "sms", fakeDirectory{stall: true}, history, nil)
	a, _ := newComposer(t).Compose(Draft{Type: "drought", District: "Gulu", Message: "Dry spell expected"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := d.Send(ctx, a); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if len(history.alerts) != 1 || history.alerts[0].Status != StatusFailed {
		t.Errorf("timed out alert should be recorded as failed: %+v", history.alerts)
	}
}

func TestDispatcher_NoRecipients(t *testing.T) {
	ctx := context.Background()
	broker := memory.New()
	_ = broker.Connect(ctx)

	d := NewDispatcher(broker, "sms", fakeDirectory{farmers: directory}, nil, nil)
	a, _ := newComposer(t).Compose(Draft{Type: "planting", District: "Mbarara", Crop: "Coffee", Message: "Optimal planting conditions"})

	sent, err := d.Send(ctx, a)
	if err != nil {
		t.Fatal(err)
	}
	if sent.Status != StatusSent || sent.SentTo != 0 {
		t.Errorf("unexpected outcome %+v", sent)
	}
}
