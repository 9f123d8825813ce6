package workshop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextFollowsLifecycle(t *testing.T) {
	cases := []struct {
		from Status
		mode string
		want Status
	}{
		{StatusNew, ModeQuote, StatusPickup},
		{StatusPickup, ModeQuote, StatusToBeQuoted},
		{StatusToBeQuoted, ModeQuote, StatusDocketReady},
		{StatusDocketReady, ModeQuote, StatusQuoted},
		{StatusDocketReady, ModeRepaired, StatusRepaired},
		{StatusQuoted, ModeQuote, StatusWaitingApprovalPO},
		{StatusWaitingApprovalPO, ModeQuote, StatusWaitingForParts},
		{StatusWaitingForParts, ModeQuote, StatusBookedInForRepair},
		{StatusBookedInForRepair, ModeQuote, StatusRepaired},
		{StatusRepaired, ModeRepaired, StatusCompleted},
	}
	for _, tc := range cases {
		got, err := Next(tc.from, tc.mode)
		require.NoError(t, err, "from %s", tc.from)
		assert.Equal(t, tc.want, got, "from %s", tc.from)
	}
}

func TestNextRejectsTerminalAndUnknown(t *testing.T) {
	_, err := Next(StatusCompleted, ModeQuote)
	assert.ErrorIs(t, err, ErrTerminalStatus)

	_, err = Next("to_be_scrapped", ModeQuote)
	assert.ErrorIs(t, err, ErrUnknownStatus)

	_, err = Next("", ModeQuote)
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestKnown(t *testing.T) {
	for _, s := range []Status{StatusNew, StatusDocketReady, StatusCompleted, StatusBookedInForRepair} {
		assert.True(t, Known(s), string(s))
	}
	assert.False(t, Known("to_be_scrapped"))
	assert.False(t, Known(""))
}
