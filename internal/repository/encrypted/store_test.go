package encrypted

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dahbi-Dev/Excel-easy/internal/repository/memory"
	"github.com/Dahbi-Dev/Excel-easy/internal/repository/repotest"
	"github.com/Dahbi-Dev/Excel-easy/pkg/security"
)

func newEncryptor(t *testing.T) security.Encryptor {
	enc, err := security.NewAESEncryptorFromHex(strings.Repeat("ab", 32))
	require.NoError(t, err)
	return enc
}

func TestStore(t *testing.T) {
	repotest.Run(t, NewStore(memory.NewStore(), newEncryptor(t)))
}

func TestStoreSealsValues(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewStore()
	store := NewStore(backend, newEncryptor(t))

	require.NoError(t, store.Set(ctx, "k", []byte(`{"Nom":"Alaoui"}`)))

	raw, err := backend.Get(ctx, "k")
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "Alaoui")

	// Plain values written before encryption was enabled are unreadable.
	require.NoError(t, backend.Set(ctx, "plain", []byte(`[]`)))
	_, err = store.Get(ctx, "plain")
	assert.Error(t, err)
}
