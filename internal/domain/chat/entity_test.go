package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPairKey_IsOrderIndependent(t *testing.T) {
	req := require.New(t)

	req.Equal("1:2", PairKey(1, 2))
	req.Equal("1:2", PairKey(2, 1))
	req.Equal("7:30", PairKey(30, 7))
}

func TestDetails_ParticipantIDs(t *testing.T) {
	d := Details{Participants: []Participant{{ChatID: 9, UserID: 1}, {ChatID: 9, UserID: 2}}}
	require.Equal(t, []int64{1, 2}, d.ParticipantIDs())
}
