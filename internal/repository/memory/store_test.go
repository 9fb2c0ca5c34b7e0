package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dahbi-Dev/Excel-easy/internal/repository/repotest"
)

func TestStore(t *testing.T) {
	repotest.Run(t, NewStore())
}

func TestStoreCopiesValues(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", value))
	value[0] = 'x'

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}
