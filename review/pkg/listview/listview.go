// Package listview holds the state of a review list screen: loading the
// list, confirming and deleting a review, and signalling mutations to other
// views.
package listview

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/abhishek622/movieticket/pkg/apperr"
	"github.com/abhishek622/movieticket/review/pkg/model"
)

// ErrDeleteInFlight is returned when a delete of the same review is already
// pending.
var ErrDeleteInFlight = errors.New("delete already in progress")

// Status is the phase of the list.
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// State is a snapshot of the list. Reviews is set when idle, Message when
// in error.
type State struct {
	Status  Status
	Reviews []*model.Review
	Message string
}

// Store is the remote side of the list.
type Store interface {
	List(ctx context.Context) ([]*model.Review, error)
	Delete(ctx context.Context, id string) error
}

// Confirmer asks the user to confirm deleting r.
type Confirmer interface {
	Confirm(ctx context.Context, r *model.Review) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, r *model.Review) bool

// Confirm calls f.
func (f ConfirmFunc) Confirm(ctx context.Context, r *model.Review) bool { return f(ctx, r) }

// View is the review list of one signed-in (or anonymous) viewer.
type View struct {
	store   Store
	confirm Confirmer
	signal  *Signal
	viewer  string

	mu           sync.Mutex
	gen          uint64
	state        State
	detail       string
	deleting     map[string]struct{}
	notification *apperr.Notification
}

// New creates an idle, empty view. viewerUID may be empty for anonymous
// viewers, who can never delete. A nil signal disables mutation
// notifications.
func New(store Store, confirm Confirmer, signal *Signal, viewerUID string) *View {
	return &View{
		store:    store,
		confirm:  confirm,
		signal:   signal,
		viewer:   viewerUID,
		state:    State{Status: StatusIdle, Reviews: []*model.Review{}},
		deleting: map[string]struct{}{},
	}
}

// State returns a snapshot of the list.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	st := v.state
	st.Reviews = slices.Clone(v.state.Reviews)
	return st
}

// Refresh reloads the list. Results of a refresh overtaken by a newer one
// are discarded.
func (v *View) Refresh(ctx context.Context) error {
	v.mu.Lock()
	v.gen++
	gen := v.gen
	v.state = State{Status: StatusLoading}
	v.mu.Unlock()

	reviews, err := v.store.List(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if gen != v.gen {
		return err
	}
	if err != nil {
		v.state = State{Status: StatusError, Message: apperr.Notify(err).Message}
		return err
	}
	if reviews == nil {
		reviews = []*model.Review{}
	}
	v.state = State{Status: StatusIdle, Reviews: reviews}
	return nil
}

// CanEdit reports whether the viewer may change r.
func (v *View) CanEdit(r *model.Review) bool {
	return model.IsOwner(v.viewer, r)
}

// Open shows the detail view of review id.
func (v *View) Open(id string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.detail = id
}

// Detail returns the review shown in the detail view.
func (v *View) Detail() (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.detail, v.detail != ""
}

// CloseDetail closes the detail view.
func (v *View) CloseDetail() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.detail = ""
}

// Notification returns the notification of the last failed delete.
func (v *View) Notification() (apperr.Notification, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.notification == nil {
		return apperr.Notification{}, false
	}
	return *v.notification, true
}

// Delete asks for confirmation and deletes review id. It reports whether
// the review was deleted; a declined confirmation is not an error. The
// review leaves the list only after the store confirmed the delete.
func (v *View) Delete(ctx context.Context, id string) (bool, error) {
	v.mu.Lock()
	if _, ok := v.deleting[id]; ok {
		v.mu.Unlock()
		return false, ErrDeleteInFlight
	}
	i := slices.IndexFunc(v.state.Reviews, func(r *model.Review) bool { return r.ID == id })
	if i < 0 {
		v.mu.Unlock()
		return false, apperr.ErrNotFound
	}
	r := v.state.Reviews[i]
	v.deleting[id] = struct{}{}
	v.mu.Unlock()

	defer func() {
		v.mu.Lock()
		delete(v.deleting, id)
		v.mu.Unlock()
	}()

	if !v.CanEdit(r) {
		v.fail(apperr.ErrPermission)
		return false, apperr.ErrPermission
	}
	if !v.confirm.Confirm(ctx, r) {
		return false, nil
	}
	if err := v.store.Delete(ctx, id); err != nil {
		v.fail(err)
		return false, err
	}

	v.mu.Lock()
	v.state.Reviews = slices.DeleteFunc(slices.Clone(v.state.Reviews), func(r *model.Review) bool { return r.ID == id })
	if v.detail == id {
		v.detail = ""
	}
	v.notification = nil
	v.mu.Unlock()

	if v.signal != nil {
		v.signal.Notify()
	}
	return true, nil
}

func (v *View) fail(err error) {
	n := apperr.Notify(err)
	v.mu.Lock()
	v.notification = &n
	v.mu.Unlock()
}
