package workspace

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/Dahbi-Dev/Excel-easy/internal/repository"
	"github.com/Dahbi-Dev/Excel-easy/internal/service/editor"
	"github.com/Dahbi-Dev/Excel-easy/internal/service/entry"
	"github.com/Dahbi-Dev/Excel-easy/internal/service/gate"
	"github.com/Dahbi-Dev/Excel-easy/internal/service/importer"
	"github.com/Dahbi-Dev/Excel-easy/internal/storage"
	"github.com/Dahbi-Dev/Excel-easy/pkg/logger"
	"github.com/Dahbi-Dev/Excel-easy/pkg/metrics"
)

type Options struct {
	AutosaveDelay time.Duration
	// IdleTimeout evicts workspaces not used for that long; zero keeps them
	// until Close.
	IdleTimeout time.Duration
}

// Manager opens workspaces on first use and keeps them in memory while they
// are in use. An evicted workspace is reopened from the store on its next
// request.
type Manager struct {
	mu         sync.Mutex
	workspaces *cache.Cache

	store    repository.KVStore
	importer *importer.Service
	gate     *gate.Service
	opts     Options
	log      *logger.Logger
	metrics  *metrics.Metrics
}

func NewManager(store repository.KVStore, imp *importer.Service, g *gate.Service, opts Options, log *logger.Logger, m *metrics.Metrics) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	ttl := opts.IdleTimeout
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	mgr := &Manager{
		workspaces: cache.New(ttl, cleanupInterval(opts.IdleTimeout)),
		store:      store,
		importer:   imp,
		gate:       g,
		opts:       opts,
		log:        log,
		metrics:    m,
	}
	mgr.workspaces.OnEvicted(mgr.evicted)
	return mgr
}

func cleanupInterval(idle time.Duration) time.Duration {
	if idle <= 0 {
		return 0
	}
	if idle < time.Minute {
		return idle
	}
	return time.Minute
}

// Get returns the workspace for id, loading its records and resuming an
// interrupted edit the first time it is asked for. Each call restarts the
// idle timer.
func (m *Manager) Get(ctx context.Context, id string) *Workspace {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.workspaces.Get(id); ok {
		w := v.(*Workspace)
		m.workspaces.SetDefault(id, w)
		return w
	}
	// an expired entry for id must be closed before it is replaced
	m.workspaces.DeleteExpired()

	log := m.log.With("workspace", id)
	adapter := storage.NewAdapter(m.store, id, log, m.metrics)
	w := &Workspace{
		id:       id,
		store:    adapter,
		table:    editor.NewTable(adapter, log),
		form:     entry.NewForm(adapter, m.opts.AutosaveDelay, log, m.metrics),
		importer: m.importer,
		gate:     m.gate,
		log:      log,
	}
	w.table.Load(ctx)

	m.workspaces.SetDefault(id, w)
	if m.metrics != nil {
		m.metrics.OpenWorkspaces.Inc()
	}
	log.Debug("workspace opened", "records", w.table.Len())
	return w
}

// Len returns the number of open workspaces.
func (m *Manager) Len() int {
	return m.workspaces.ItemCount()
}

// Close stores every dirty entry draft and forgets all workspaces.
func (m *Manager) Close(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.workspaces.DeleteExpired()
	for id, item := range m.workspaces.Items() {
		m.closeWorkspace(ctx, item.Object.(*Workspace))
		m.workspaces.Delete(id)
	}
}

// evicted runs for every workspace the cache drops, idle or deleted by Close.
func (m *Manager) evicted(_ string, v interface{}) {
	m.closeWorkspace(context.Background(), v.(*Workspace))
}

func (m *Manager) closeWorkspace(ctx context.Context, w *Workspace) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.closed = true
	w.form.Close(ctx, true)
	if m.metrics != nil {
		m.metrics.OpenWorkspaces.Dec()
	}
	w.log.Debug("workspace closed")
}
