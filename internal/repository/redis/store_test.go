package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dahbi-Dev/Excel-easy/internal/repository/repotest"
)

func TestStore(t *testing.T) {
	mr := miniredis.RunT(t)

	store, err := NewStore(context.Background(), Config{URL: "redis://" + mr.Addr() + "/0"})
	require.NoError(t, err)
	defer store.Close()

	repotest.Run(t, store)
	assert.True(t, mr.Exists("ws:a:patient_records"))
}

func TestNewStoreBadURL(t *testing.T) {
	_, err := NewStore(context.Background(), Config{URL: "://nope"})
	assert.Error(t, err)
}
