package gorm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agroguard/agroguard/core/pkg/alerts"
	"github.com/agroguard/agroguard/core/pkg/registration"
	"github.com/google/go-cmp/cmp"
)

func setupTestDB(t *testing.T) *Driver {
	t.Helper()
	driver, err := OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = driver.Close() })
	return driver
}

func TestOpenSQLite(t *testing.T) {
	driver := setupTestDB(t)

	if driver.DB() == nil {
		t.Error("DB() should return underlying gorm.DB")
	}
	if err := driver.Ping(context.Background()); err != nil {
		t.Errorf("Ping error: %v", err)
	}
	if driver.Name() != "database" {
		t.Errorf("unexpected name %q", driver.Name())
	}
}

func TestDriver_Drafts(t *testing.T) {
	driver := setupTestDB(t)
	ctx := context.Background()
	t0 := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	first := registration.Draft{
		ID: "kitchen-table",
		Input: registration.Input{
			Name:     "John Mukasa",
			Phone:    "+256 700 123 456",
			District: "Kabale",
			Crop:     "Maize",
			Language: registration.LanguageRunyankole,
		},
		LastError: "register farmer: Phone number already registered",
		UpdatedAt: t0,
	}
	second := registration.Draft{
		ID:        "market-day",
		Input:     registration.Input{Name: "Sarah", Language: registration.LanguageLuganda},
		UpdatedAt: t0.Add(time.Hour),
	}

	t.Run("save and load", func(t *testing.T) {
		if err := driver.SaveDraft(ctx, first); err != nil {
			t.Fatalf("SaveDraft error: %v", err)
		}
		got, err := driver.LoadDraft(ctx, first.ID)
		if err != nil {
			t.Fatalf("LoadDraft error: %v", err)
		}
		if diff := cmp.Diff(first, got); diff != "" {
			t.Errorf("draft mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("save replaces", func(t *testing.T) {
		updated := first
		updated.Input.SubCounty = "Rubanda"
		updated.LastError = ""
		if err := driver.SaveDraft(ctx, updated); err != nil {
			t.Fatal(err)
		}
		got, _ := driver.LoadDraft(ctx, first.ID)
		if got.Input.SubCounty != "Rubanda" || got.LastError != "" {
			t.Errorf("draft not replaced: %+v", got)
		}
	})

	t.Run("list newest first", func(t *testing.T) {
		if err := driver.SaveDraft(ctx, second); err != nil {
			t.Fatal(err)
		}
		drafts, err := driver.ListDrafts(ctx)
		if err != nil {
			t.Fatalf("ListDrafts error: %v", err)
		}
		if len(drafts) != 2 || drafts[0].ID != "market-day" || drafts[1].ID != "kitchen-table" {
			t.Errorf("unexpected order: %+v", drafts)
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := driver.DeleteDraft(ctx, first.ID); err != nil {
			t.Fatalf("DeleteDraft error: %v", err)
		}
		if _, err := driver.LoadDraft(ctx, first.ID); !errors.Is(err, registration.ErrDraftNotFound) {
			t.Errorf("expected ErrDraftNotFound, got %v", err)
		}
		if err := driver.DeleteDraft(ctx, first.ID); !errors.Is(err, registration.ErrDraftNotFound) {
			t.Errorf("second delete should report not found, got %v", err)
		}
	})
}

type stubRegistrar struct {
	err   error
	stall bool
}

func (s stubRegistrar) RegisterFarmer(ctx context.Context, in registration.Input) (*registration.Farmer, error) {
	if s.stall {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if s.err != nil {
		return nil, s.err
	}
	return &registration.Farmer{ID: "F100", Input: in, Status: registration.StatusActive}, nil
}

func TestDriver_DraftSessionRoundTrip(t *testing.T) {
	driver := setupTestDB(t)
	ctx := context.Background()

	ds, err := registration.ResumeSession(ctx, driver, "d1", registration.DefaultValidator())
	if err != nil {
		t.Fatal(err)
	}
	_ = ds.Set(registration.FieldName, "Mary Akello")
	_ = ds.Set(registration.FieldPhone, "256701234567")
	_ = ds.Set(registration.FieldDistrict, "Gulu")
	_ = ds.Set(registration.FieldCrop, "Beans")

	if _, err := ds.Submit(ctx, stubRegistrar{err: errors.New("backend offline")}); err == nil {
		t.Fatal("expected submit error")
	}

	resumed, err := registration.ResumeSession(ctx, driver, "d1", registration.DefaultValidator())
	if err != nil {
		t.Fatal(err)
	}
	if got := resumed.Input().Phone; got != "+256 701 234 567" {
		t.Errorf("draft phone not restored: %q", got)
	}

	if _, err := resumed.Submit(ctx, stubRegistrar{}); err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if _, err := driver.LoadDraft(ctx, "d1"); !errors.Is(err, registration.ErrDraftNotFound) {
		t.Errorf("draft should be removed after success, got %v", err)
	}
}

func TestDriver_DraftSavedAfterTimeout(t *testing.T) {
	driver := setupTestDB(t)

	ds, err := registration.ResumeSession(context.Background(), driver, "slow", registration.DefaultValidator())
	if err != nil {
		t.Fatal(err)
	}
	_ = ds.Set(registration.FieldName, "Peter Okot")
	_ = ds.Set(registration.FieldPhone, "256772000111")
	_ = ds.Set(registration.FieldDistrict, "Lira")
	_ = ds.Set(registration.FieldCrop, "Cassava")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := ds.Submit(ctx, stubRegistrar{stall: true}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}

	d, err := driver.LoadDraft(context.Background(), "slow")
	if err != nil {
		t.Fatalf("draft should be stored after a timeout: %v", err)
	}
	if d.Input.Phone != "+256 772 000 111" || d.LastError == "" {
		t.Errorf("unexpected draft %+v", d)
	}
}

func TestDriver_AlertHistory(t *testing.T) {
	driver := setupTestDB(t)
	ctx := context.Background()
	t0 := time.Date(2024, 5, 31, 14, 30, 0, 0, time.UTC)

	for i, typ := range []alerts.Type{alerts.TypeDrought, alerts.TypePest, alerts.TypeHarvest} {
		err := driver.RecordAlert(ctx, alerts.Alert{
			ID:        string(typ),
			Type:      typ,
			Priority:  alerts.PriorityHigh,
			District:  "Gulu",
			Crop:      alerts.AllCrops,
			Message:   "message " + string(typ),
			SentTo:    i,
			Status:    alerts.StatusSent,
			Timestamp: t0.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("RecordAlert error: %v", err)
		}
	}

	t.Run("newest first with limit", func(t *testing.T) {
		got, err := driver.RecentAlerts(ctx, 2)
		if err != nil {
			t.Fatalf("RecentAlerts error: %v", err)
		}
		if len(got) != 2 || got[0].ID != "harvest" || got[1].ID != "pest" {
			t.Errorf("unexpected alerts: %+v", got)
		}
		if got[0].SentTo != 2 || got[0].Status != alerts.StatusSent || !got[0].Timestamp.Equal(t0.Add(2*time.Hour)) {
			t.Errorf("fields not round-tripped: %+v", got[0])
		}
	})

	t.Run("no limit", func(t *testing.T) {
		got, _ := driver.RecentAlerts(ctx, 0)
		if len(got) != 3 {
			t.Errorf("expected 3 alerts, got %d", len(got))
		}
	})

	t.Run("record replaces by id", func(t *testing.T) {
		err := driver.RecordAlert(ctx, alerts.Alert{ID: "pest", Type: alerts.TypePest, Status: alerts.StatusFailed, Timestamp: t0})
		if err != nil {
			t.Fatal(err)
		}
		got, _ := driver.RecentAlerts(ctx, 0)
		if len(got) != 3 {
			t.Errorf("expected 3 alerts after replace, got %d", len(got))
		}
	})
}
