package fracta

import (
	"context"
	"errors"
	"runtime/debug"
	"sync"
	"time"

	"github.com/fracta-city/fracta/internal/auth"
	"github.com/fracta-city/fracta/internal/config"
	"github.com/fracta-city/fracta/internal/metrics"
	"github.com/fracta-city/fracta/internal/models"
	"github.com/fracta-city/fracta/pkg/logger"
)

// notificationTimeout bounds a single asynchronous delivery.
const notificationTimeout = 30 * time.Second

var _ models.FractaI = (*Fracta)(nil)

// Fracta is the main struct for the Fracta application.
// It owns the investment ledger, token minting, the KYC lifecycle, the
// property catalog and wallet sessions, and serves all business logic.
type Fracta struct {
	logger  *logger.Logger
	config  *config.Config
	metrics *metrics.Metrics

	repo        models.Repository
	mirror      models.ChainMirror
	notificator models.NotificationService

	jwt       *auth.JWTService
	store     auth.Store
	recoverer auth.SignatureRecoverer

	now func() time.Time

	// notifications are delivered one at a time in the order they were queued
	queueMu  sync.Mutex
	queue    []*models.Notification
	draining bool
	wg       sync.WaitGroup
}

// NewFracta creates a new Fracta instance. notificator may be nil.
func NewFracta(
	repo models.Repository,
	mirror models.ChainMirror,
	notificator models.NotificationService,
	jwt *auth.JWTService,
	store auth.Store,
	recoverer auth.SignatureRecoverer,
	metrics *metrics.Metrics,
	logger *logger.Logger,
	config *config.Config,
) *Fracta {
	return &Fracta{
		repo:        repo,
		mirror:      mirror,
		notificator: notificator,
		jwt:         jwt,
		store:       store,
		recoverer:   recoverer,
		metrics:     metrics,
		logger:      logger,
		config:      config,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Wait blocks until in-flight notifications are delivered.
func (f *Fracta) Wait() {
	f.wg.Wait()
}

// notify queues n for background delivery after any earlier notification.
func (f *Fracta) notify(n *models.Notification) {
	if f.notificator == nil {
		return
	}
	f.queueMu.Lock()
	f.queue = append(f.queue, n)
	if f.draining {
		f.queueMu.Unlock()
		return
	}
	f.draining = true
	f.wg.Add(1)
	f.queueMu.Unlock()

	go f.drain()
}

func (f *Fracta) drain() {
	defer f.wg.Done()
	for {
		f.queueMu.Lock()
		if len(f.queue) == 0 {
			f.draining = false
			f.queueMu.Unlock()
			return
		}
		n := f.queue[0]
		f.queue = f.queue[1:]
		f.queueMu.Unlock()

		f.deliver(n)
	}
}

func (f *Fracta) deliver(n *models.Notification) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("Notification panicked",
				"kind", n.Kind,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), notificationTimeout)
	defer cancel()
	f.notificator.SendNotification(ctx, n)
}

// Health pings the store and reports the chain mirror's connectivity.
func (f *Fracta) Health(ctx context.Context) *models.HealthStatus {
	status := &models.HealthStatus{Status: "healthy", Database: "connected", Chain: "disabled"}

	if err := f.repo.Ping(ctx); err != nil {
		f.logger.Error("Database health check failed", "error", err)
		status.Status = "unhealthy"
		status.Database = "disconnected"
	}

	if f.config.ChainEnabled() {
		if f.mirror.Network(ctx).Connected {
			status.Chain = "connected"
		} else {
			status.Chain = "disconnected"
		}
	}
	return status
}

// getUser loads a user, mapping a missing row to NotFound.
func (f *Fracta) getUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := f.repo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, f.storeError(err, "user not found", "failed to load user")
	}
	return user, nil
}

// getListedProperty loads a property, treating inactive listings as missing.
func (f *Fracta) getListedProperty(ctx context.Context, propertyID int64) (*models.Property, error) {
	property, err := f.repo.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, f.storeError(err, "property not found", "failed to load property")
	}
	if !property.IsActive {
		return nil, models.NewNotFoundError("property not found", models.ErrPropertyNotFound)
	}
	return property, nil
}

// storeError converts a repository error: typed errors pass through,
// not-found sentinels become NotFound and anything else is Internal.
func (f *Fracta) storeError(err error, notFoundMsg, internalMsg string) error {
	var appErr *models.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &appErr):
		return err
	case models.IsNotFound(err):
		return models.NewNotFoundError(notFoundMsg, err)
	}
	f.logger.Error(internalMsg, "error", err)
	return models.NewInternalError(internalMsg, err)
}
