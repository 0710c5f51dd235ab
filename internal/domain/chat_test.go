package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChatInteractionCounting(t *testing.T) {
	ci := NewChatInteraction("c1", "u1", time.Now(), DefaultChatDailyLimit)
	assert.Equal(t, 20, ci.MessagesRemaining)

	ci.RecordMessage()
	assert.Equal(t, 1, ci.MessageCount)
	assert.Equal(t, 19, ci.MessagesRemaining)
	assert.Equal(t, int64(2), ci.PointsEarned)

	for i := 0; i < 19; i++ {
		assert.False(t, ci.LimitReached())
		ci.RecordMessage()
	}
	assert.True(t, ci.LimitReached())
	assert.Equal(t, 0, ci.MessagesRemaining)
	assert.Equal(t, int64(40), ci.PointsEarned)
}

func TestRemainingMessagesNeverNegative(t *testing.T) {
	assert.Equal(t, 0, RemainingMessages(20, 25))
	assert.Equal(t, 5, RemainingMessages(20, 15))
}

func TestPartnerMatches(t *testing.T) {
	p := DefaultPartnerProjects()[0]
	assert.True(t, p.Matches([]string{"carvprotocol"}))
	assert.True(t, p.Matches([]string{"#Other", "#WEB3"}))
	assert.False(t, p.Matches([]string{"#DeFi"}))
}
