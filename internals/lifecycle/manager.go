package lifecycle

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"userapi/internals/storage"
)

type State int32

const (
	Disconnected State = iota
	Connected
)

func (s State) String() string {
	if s == Connected {
		return "connected"
	}
	return "disconnected"
}

// ErrNotConnected is returned by Check when no handle is held.
var ErrNotConnected = errors.New("database not connected")

// OpenFunc establishes a database handle.
type OpenFunc func(ctx context.Context) (*gorm.DB, error)

// ProbeFunc is the liveness check run against a freshly opened handle.
type ProbeFunc func(ctx context.Context, db *gorm.DB) error

// Manager owns the shared database handle: it is acquired before the
// HTTP server starts and released after it stops.
type Manager struct {
	open   OpenFunc
	probe  ProbeFunc
	policy Policy
	log    *logrus.Logger

	mu       sync.Mutex
	db       *gorm.DB
	state    atomic.Int32
	attempts atomic.Int64
}

func NewManager(open OpenFunc, probe ProbeFunc, policy Policy, log *logrus.Logger) *Manager {
	if probe == nil {
		probe = storage.Ping
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Manager{open: open, probe: probe, policy: policy, log: log}
}

// Start blocks until the database answers the liveness check, the policy
// gives up, or ctx is cancelled.
func (m *Manager) Start(ctx context.Context) (*gorm.DB, error) {
	var db *gorm.DB
	op := func() error {
		m.attempts.Add(1)
		d, err := m.open(ctx)
		if err != nil {
			return err
		}
		if err := m.probe(ctx, d); err != nil {
			_ = storage.Close(d)
			return err
		}
		db = d
		return nil
	}
	notify := func(err error, wait time.Duration) {
		m.log.WithFields(logrus.Fields{
			"attempt":  m.attempts.Load(),
			"retry_in": wait.String(),
		}).WithError(err).Warn("waiting for database...")
	}

	if err := backoff.RetryNotify(op, m.policy.backOff(ctx), notify); err != nil {
		return nil, errors.Wrapf(err, "database not reachable after %d attempts", m.attempts.Load())
	}

	m.mu.Lock()
	m.db = db
	m.mu.Unlock()
	m.state.Store(int32(Connected))
	m.log.WithField("attempts", m.attempts.Load()).Info("database connected successfully")
	return db, nil
}

// Stop releases the connection. Calling it more than once is harmless.
func (m *Manager) Stop() error {
	m.mu.Lock()
	db := m.db
	m.db = nil
	m.mu.Unlock()
	m.state.Store(int32(Disconnected))
	if db == nil {
		return nil
	}
	if err := storage.Close(db); err != nil {
		return errors.Wrap(err, "close database")
	}
	m.log.Info("database connection released")
	return nil
}

func (m *Manager) DB() *gorm.DB {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.db
}

// Check runs the liveness check against the held handle.
func (m *Manager) Check(ctx context.Context) error {
	db := m.DB()
	if db == nil {
		return ErrNotConnected
	}
	return m.probe(ctx, db)
}

func (m *Manager) State() State {
	return State(m.state.Load())
}

// Attempts is the number of connection attempts made so far.
func (m *Manager) Attempts() int64 {
	return m.attempts.Load()
}
