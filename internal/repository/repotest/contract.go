// Package repotest holds the behaviour every KVStore must share.
package repotest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dahbi-Dev/Excel-easy/internal/repository"
)

// Run exercises store against the KVStore contract.
func Run(t *testing.T, store repository.KVStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := store.Get(ctx, "absent")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "ws:a:patient_records", []byte(`[]`)))
		require.NoError(t, store.Set(ctx, "ws:a:patient_records", []byte(`[{"Nom":"Alaoui"}]`)))

		got, err := store.Get(ctx, "ws:a:patient_records")
		require.NoError(t, err)
		assert.Equal(t, `[{"Nom":"Alaoui"}]`, string(got))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "ws:a:last_ipp_number", []byte(`7`)))
		require.NoError(t, store.Delete(ctx, "ws:a:last_ipp_number"))
		require.NoError(t, store.Delete(ctx, "ws:a:last_ipp_number"))

		_, err := store.Get(ctx, "ws:a:last_ipp_number")
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("keys are independent", func(t *testing.T) {
		require.NoError(t, store.Set(ctx, "ws:a:k", []byte(`"a"`)))
		require.NoError(t, store.Set(ctx, "ws:b:k", []byte(`"b"`)))

		got, err := store.Get(ctx, "ws:a:k")
		require.NoError(t, err)
		assert.Equal(t, `"a"`, string(got))
	})

	if p, ok := store.(repository.Pinger); ok {
		t.Run("ping", func(t *testing.T) {
			assert.NoError(t, p.Ping(ctx))
		})
	}
}
