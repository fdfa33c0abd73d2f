package registration

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrDraftNotFound is returned by a DraftStore for an unknown draft id
var ErrDraftNotFound = errors.New("registration: draft not found")

// saveTimeout bounds the draft write that follows a failed submission
const saveTimeout = 5 * time.Second

// Draft is an in-progress form saved between attempts
type Draft struct {
	ID        string    `json:"id"`
	Input     Input     `json:"input"`
	LastError string    `json:"lastError,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DraftStore persists drafts
type DraftStore interface {
	SaveDraft(ctx context.Context, d Draft) error
	LoadDraft(ctx context.Context, id string) (Draft, error)
	DeleteDraft(ctx context.Context, id string) error
	ListDrafts(ctx context.Context) ([]Draft, error)
}

// DraftSession is a FormSession backed by a stored draft
type DraftSession struct {
	*FormSession
	ID    string
	store DraftStore
	now   func() time.Time
}

// ResumeSession loads draft id into a new session, or starts an empty one
// when no draft exists under that id.
func ResumeSession(ctx context.Context, store DraftStore, id string, v *Validator) (*DraftSession, error) {
	ds := &DraftSession{
		FormSession: NewFormSession(v),
		ID:          id,
		store:       store,
		now:         time.Now,
	}

	d, err := store.LoadDraft(ctx, id)
	switch {
	case err == nil:
		ds.Restore(d.Input)
	case errors.Is(err, ErrDraftNotFound):
	default:
		return nil, fmt.Errorf("load draft %s: %w", id, err)
	}
	return ds, nil
}

// Save stores the current values under the session's draft id
func (ds *DraftSession) Save(ctx context.Context, lastErr error) error {
	d := Draft{ID: ds.ID, Input: ds.Input(), UpdatedAt: ds.now().UTC()}
	if lastErr != nil {
		d.LastError = lastErr.Error()
	}
	if err := ds.store.SaveDraft(ctx, d); err != nil {
		return fmt.Errorf("save draft %s: %w", ds.ID, err)
	}
	return nil
}

// Submit submits the form. A failed submission is saved as a draft;
// a successful one removes the draft. The draft is written even when the
// failure was ctx expiring.
func (ds *DraftSession) Submit(ctx context.Context, r Registrar) (*Farmer, error) {
	farmer, err := ds.FormSession.Submit(ctx, r)
	if err != nil {
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), saveTimeout)
		defer cancel()
		if saveErr := ds.Save(saveCtx, err); saveErr != nil {
			return nil, errors.Join(err, saveErr)
		}
		return nil, err
	}

	if err := ds.store.DeleteDraft(ctx, ds.ID); err != nil && !errors.Is(err, ErrDraftNotFound) {
		return farmer, fmt.Errorf("delete draft %s: %w", ds.ID, err)
	}
	return farmer, nil
}
