// Package storage is the JSON layer over a key-value store. Failures are
// logged and swallowed: persistence degrades, the caller carries on with its
// in-memory state.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Dahbi-Dev/Excel-easy/internal/repository"
	"github.com/Dahbi-Dev/Excel-easy/pkg/logger"
	"github.com/Dahbi-Dev/Excel-easy/pkg/metrics"
)

// Logical keys.
const (
	KeyPatients      = "patient_records"
	KeyFormDraft     = "patient_form_draft"
	KeyLastIPP       = "last_ipp_number"
	KeyEditingBackup = "editing_backup"
	KeyAdminGate     = "isAdminAuthenticated"
)

// Adapter reads and writes JSON values under a namespace.
type Adapter struct {
	store     repository.KVStore
	namespace string
	log       *logger.Logger
	metrics   *metrics.Metrics
}

// NewAdapter scopes store to namespace. metrics may be nil.
func NewAdapter(store repository.KVStore, namespace string, log *logger.Logger, m *metrics.Metrics) *Adapter {
	if log == nil {
		log = logger.Nop()
	}
	return &Adapter{
		store:     store,
		namespace: namespace,
		log:       log,
		metrics:   m,
	}
}

func (a *Adapter) key(k string) string {
	if a.namespace == "" {
		return k
	}
	return "ws:" + a.namespace + ":" + k
}

// Save serialises v and overwrites key. It reports whether the write landed.
func (a *Adapter) Save(ctx context.Context, key string, v any) bool {
	data, err := json.Marshal(v)
	if err != nil {
		a.log.Error(err, "error saving to store", "key", key, "stage", "encode")
		a.observe("set", time.Now(), err)
		return false
	}

	start := time.Now()
	err = a.store.Set(ctx, a.key(key), data)
	a.observe("set", start, err)
	if err != nil {
		a.log.Error(err, "error saving to store", "key", key)
		return false
	}
	return true
}

// Load decodes the value of key into dst. It reports false when the key is
// absent or unreadable; dst is then left untouched.
func (a *Adapter) Load(ctx context.Context, key string, dst any) bool {
	start := time.Now()
	data, err := a.store.Get(ctx, a.key(key))
	if errors.Is(err, repository.ErrNotFound) {
		a.observe("get", start, nil)
		return false
	}
	a.observe("get", start, err)
	if err != nil {
		a.log.Error(err, "error reading from store", "key", key)
		return false
	}
	if len(data) == 0 || string(data) == "null" {
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		a.log.Error(err, "error reading from store", "key", key, "stage", "decode")
		return false
	}
	return true
}

// Remove deletes key.
func (a *Adapter) Remove(ctx context.Context, key string) bool {
	start := time.Now()
	err := a.store.Delete(ctx, a.key(key))
	a.observe("delete", start, err)
	if err != nil {
		a.log.Error(err, "error removing from store", "key", key)
		return false
	}
	return true
}

func (a *Adapter) observe(op string, start time.Time, err error) {
	if a.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	a.metrics.StoreOperations.WithLabelValues(op, status).Inc()
	a.metrics.StoreLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
