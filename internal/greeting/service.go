// Package greeting implements the create, list, get, update and delete
// operations on greeting cards.
//
// Writes follow a load, mutate, save cycle against the record store. The
// cycle is serialised by a process wide mutex so two requests in the same
// process cannot lose each other's changes; separate processes sharing one
// store still resolve as last-writer-wins.
package greeting

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"greeting-card-go/internal/metrics"
	"greeting-card-go/internal/model"
	"greeting-card-go/internal/notifier"
	"greeting-card-go/internal/store"
)

const defaultNotifyTimeout = 10 * time.Second

// Service manages greeting cards
type Service struct {
	store         store.Store
	notifier      notifier.Notifier
	metrics       *metrics.Metrics
	notifyTimeout time.Duration

	now   func() time.Time
	newID func(time.Time) string

	mu sync.Mutex
}

// NewService creates a greeting service. A zero notifyTimeout uses the default.
func NewService(st store.Store, n notifier.Notifier, m *metrics.Metrics, notifyTimeout time.Duration) *Service {
	if notifyTimeout <= 0 {
		notifyTimeout = defaultNotifyTimeout
	}
	return &Service{
		store:         st,
		notifier:      n,
		metrics:       m,
		notifyTimeout: notifyTimeout,
		now:           func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		newID:         newID,
	}
}

// Create validates in, stores a new greeting and notifies its sender
func (s *Service) Create(ctx context.Context, in Input) (model.Greeting, error) {
	defer s.observe("create")()

	in = in.Normalize()
	if err := Validate(in); err != nil {
		return model.Greeting{}, err
	}

	occasion := model.Occasion(in.Occasion)
	if occasion == "" {
		occasion = model.DefaultOccasion
	}

	var created model.Greeting
	err := s.mutate(ctx, func(greetings []model.Greeting) ([]model.Greeting, error) {
		now := s.now()
		created = model.Greeting{
			ID:            s.uniqueID(greetings, now),
			SenderName:    in.SenderName,
			SenderEmail:   in.SenderEmail,
			RecipientName: in.RecipientName,
			Message:       in.Message,
			Occasion:      occasion,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		return append(greetings, created), nil
	})
	if err != nil {
		return model.Greeting{}, err
	}

	s.metrics.GreetingsCreated.Inc()
	logrus.WithFields(logrus.Fields{
		"greeting_id": created.ID,
		"occasion":    string(created.Occasion),
	}).Info("Greeting created")

	s.notify(ctx, created, notifier.ActionCreated)
	return created, nil
}

// List returns every greeting in insertion order
func (s *Service) List(ctx context.Context) ([]model.Greeting, error) {
	defer s.observe("list")()

	greetings, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return greetings, nil
}

// Get returns the greeting with the given id
func (s *Service) Get(ctx context.Context, id string) (model.Greeting, error) {
	defer s.observe("get")()

	greetings, err := s.load(ctx)
	if err != nil {
		return model.Greeting{}, err
	}
	i := indexOf(greetings, id)
	if i < 0 {
		return model.Greeting{}, ErrNotFound
	}
	return greetings[i], nil
}

// Update replaces the mutable fields of a greeting. An empty occasion keeps
// the stored one.
func (s *Service) Update(ctx context.Context, id string, in Input) (model.Greeting, error) {
	defer s.observe("update")()

	in = in.Normalize()

	var updated model.Greeting
	err := s.mutate(ctx, func(greetings []model.Greeting) ([]model.Greeting, error) {
		i := indexOf(greetings, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		if err := Validate(in); err != nil {
			return nil, err
		}

		g := greetings[i]
		g.SenderName = in.SenderName
		g.SenderEmail = in.SenderEmail
		g.RecipientName = in.RecipientName
		g.Message = in.Message
		if in.Occasion != "" {
			g.Occasion = model.Occasion(in.Occasion)
		}

		// updatedAt must move forward even within the same millisecond
		now := s.now()
		if !now.After(g.UpdatedAt) {
			now = g.UpdatedAt.Add(time.Millisecond)
		}
		g.UpdatedAt = now

		greetings[i] = g
		updated = g
		return greetings, nil
	})
	if err != nil {
		return model.Greeting{}, err
	}

	s.metrics.GreetingsUpdated.Inc()
	logrus.WithField("greeting_id", updated.ID).Info("Greeting updated")

	s.notify(ctx, updated, notifier.ActionUpdated)
	return updated, nil
}

// Delete removes the greeting with the given id
func (s *Service) Delete(ctx context.Context, id string) error {
	defer s.observe("delete")()

	err := s.mutate(ctx, func(greetings []model.Greeting) ([]model.Greeting, error) {
		i := indexOf(greetings, id)
		if i < 0 {
			return nil, ErrNotFound
		}
		next := make([]model.Greeting, 0, len(greetings)-1)
		next = append(next, greetings[:i]...)
		return append(next, greetings[i+1:]...), nil
	})
	if err != nil {
		return err
	}

	s.metrics.GreetingsDeleted.Inc()
	logrus.WithField("greeting_id", id).Info("Greeting deleted")
	return nil
}

// Count returns the number of stored greetings
func (s *Service) Count(ctx context.Context) (int, error) {
	greetings, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(greetings), nil
}

// Ping reports whether the record store is reachable
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) load(ctx context.Context) ([]model.Greeting, error) {
	greetings, err := s.store.LoadAll(ctx)
	if err != nil {
		s.storeFailed("load", err)
		return nil, err
	}
	return greetings, nil
}

// mutate runs one load, change, save cycle under the write lock. Nothing is
// saved when fn returns an error.
func (s *Service) mutate(ctx context.Context, fn func([]model.Greeting) ([]model.Greeting, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	greetings, err := s.load(ctx)
	if err != nil {
		return err
	}

	next, err := fn(greetings)
	if err != nil {
		return err
	}

	if err := s.store.SaveAll(ctx, next); err != nil {
		s.storeFailed("save", err)
		return err
	}
	s.metrics.GreetingsTotal.Set(float64(len(next)))
	return nil
}

func (s *Service) storeFailed(op string, err error) {
	s.metrics.StoreErrors.WithLabelValues(op).Inc()
	logrus.WithError(err).WithField("op", op).Error("Record store operation failed")
}

func (s *Service) uniqueID(greetings []model.Greeting, now time.Time) string {
	for {
		id := s.newID(now)
		if indexOf(greetings, id) < 0 {
			return id
		}
	}
}

// notify never fails the calling operation
func (s *Service) notify(ctx context.Context, g model.Greeting, action notifier.Action) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.notifyTimeout)
	defer cancel()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = &notifier.Error{Driver: "panic", Err: fmt.Errorf("%v", r)}
			}
		}()
		return s.notifier.Notify(ctx, g, action)
	}()
	if err == nil {
		return
	}

	var notifyErr *notifier.Error
	if !errors.As(err, &notifyErr) {
		err = &notifier.Error{Driver: "unknown", Err: err}
	}
	s.metrics.NotificationFailures.WithLabelValues(string(action)).Inc()
	logrus.WithError(err).WithFields(logrus.Fields{
		"greeting_id": g.ID,
		"action":      string(action),
	}).Warn("Failed to send notification")
}

func (s *Service) observe(operation string) func() {
	timer := prometheus.NewTimer(s.metrics.OperationDuration.WithLabelValues(operation))
	return func() { timer.ObserveDuration() }
}

func indexOf(greetings []model.Greeting, id string) int {
	for i, g := range greetings {
		if g.ID == id {
			return i
		}
	}
	return -1
}
