package order

import (
	"testing"

	"antaran-be/internal/actor"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusValid(t *testing.T) {
	valid := []Status{
		StatusPlaced, StatusAcceptedByVendor, StatusPreparing,
		StatusReadyForPickup, StatusAcceptedByAgent, StatusPickedUp,
		StatusOutForDelivery, StatusDelivered, StatusCancelled, StatusRejected,
	}
	for _, s := range valid {
		assert.True(t, s.Valid(), string(s))
	}

	assert.False(t, Status("UNKNOWN").Valid())
	assert.False(t, Status("").Valid())
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.True(t, StatusRejected.Terminal())
	assert.False(t, StatusPlaced.Terminal())
	assert.False(t, StatusOutForDelivery.Terminal())
}

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		target   Status
		from     []Status
		role     actor.Role
		pinGated bool
	}{
		{StatusAcceptedByVendor, []Status{StatusPlaced}, actor.RoleVendor, false},
		{StatusPreparing, []Status{StatusAcceptedByVendor}, actor.RoleVendor, false},
		{StatusReadyForPickup, []Status{StatusPreparing}, actor.RoleVendor, false},
		{StatusAcceptedByAgent, []Status{StatusReadyForPickup}, actor.RoleAgent, false},
		{StatusPickedUp, []Status{StatusAcceptedByAgent}, actor.RoleAgent, true},
		{StatusOutForDelivery, []Status{StatusPickedUp}, actor.RoleAgent, false},
		{StatusDelivered, []Status{StatusOutForDelivery}, actor.RoleAgent, true},
		{StatusCancelled, []Status{StatusPlaced, StatusAcceptedByVendor}, actor.RoleCustomer, false},
		{StatusRejected, []Status{StatusPlaced}, actor.RoleVendor, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.target), func(t *testing.T) {
			r, ok := ruleFor(tc.target)
			require.True(t, ok)
			assert.Equal(t, tc.role, r.role)
			assert.Equal(t, tc.pinGated, r.pinGated)

			for _, f := range tc.from {
				assert.True(t, r.allowsFrom(f), "expected %s -> %s", f, tc.target)
			}

			// every status not in the from set is rejected
			all := []Status{
				StatusPlaced, StatusAcceptedByVendor, StatusPreparing,
				StatusReadyForPickup, StatusAcceptedByAgent, StatusPickedUp,
				StatusOutForDelivery, StatusDelivered, StatusCancelled, StatusRejected,
			}
			for _, s := range all {
				allowed := false
				for _, f := range tc.from {
					if f == s {
						allowed = true
					}
				}
				assert.Equal(t, allowed, r.allowsFrom(s), "%s -> %s", s, tc.target)
			}
		})
	}
}

func TestTransitionTable_NoTargetForPlaced(t *testing.T) {
	// PLACED is the entry state, never a transition target.
	_, ok := ruleFor(StatusPlaced)
	assert.False(t, ok)
}

func TestTransitionTable_TerminalStatesHaveNoOutgoingEdges(t *testing.T) {
	for target, r := range transitions {
		for _, f := range r.from {
			assert.False(t, f.Terminal(), "terminal %s must not reach %s", f, target)
		}
	}
}
