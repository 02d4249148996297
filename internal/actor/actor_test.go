package actor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleCustomer.Valid())
	assert.True(t, RoleVendor.Valid())
	assert.True(t, RoleAgent.Valid())
	assert.False(t, Role("admin").Valid())
	assert.False(t, Role("").Valid())
}

func TestActorContext(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		a := Actor{ID: "user-1", Role: RoleAgent}
		ctx := WithActor(context.Background(), a)

		got, ok := FromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, a, got)
	})

	t.Run("Missing", func(t *testing.T) {
		_, ok := FromContext(context.Background())
		assert.False(t, ok)
	})
}
