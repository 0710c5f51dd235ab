package service

import (
	"context"
	"strings"
)

// Responder produces the assistant reply for a chat message.
type Responder interface {
	Reply(ctx context.Context, message string) string
}

const replyGreeting = "Hi! I'm here to help. "

type keywordReply struct {
	keywords []string
	reply    string
}

// Arabic and English keywords are both recognised; first match wins.
var keywordReplies = []keywordReply{
	{
		keywords: []string{"نقاط", "points"},
		reply: "You can earn points by:\n" +
			"• Checking in every day (10 points plus a streak bonus)\n" +
			"• Chatting with me (2 points per message)\n" +
			"• Tweeting with partner hashtags (up to 50 points per tweet)",
	},
	{
		keywords: []string{"كيف", "how"},
		reply: "The platform runs on points:\n" +
			"1. Connect your wallet\n" +
			"2. Check in daily\n" +
			"3. Complete tasks\n" +
			"4. Earn points and rewards",
	},
	{
		keywords: []string{"مساعدة", "help"},
		reply: "I can help you with:\n" +
			"• How to earn points\n" +
			"• Daily tasks\n" +
			"• Getting to know the platform\n" +
			"What would you like to know?",
	},
	{
		keywords: []string{"تويتر", "twitter"},
		reply: "To earn from Twitter:\n" +
			"1. Connect your Twitter account\n" +
			"2. Tweet with the partner hashtags\n" +
			"3. Press verify\n" +
			"4. Earn points for every tweet!",
	},
}

const defaultReply = "I'm your CARVFi assistant. Ask me about:\n" +
	"• How to earn points\n" +
	"• Available tasks\n" +
	"• The rewards system\n" +
	"How can I help you today?"

// KeywordResponder answers from a fixed set of canned replies.
type KeywordResponder struct{}

func (KeywordResponder) Reply(_ context.Context, message string) string {
	lower := strings.ToLower(message)
	for _, kr := range keywordReplies {
		for _, kw := range kr.keywords {
			if strings.Contains(lower, kw) {
				return replyGreeting + kr.reply
			}
		}
	}
	return replyGreeting + defaultReply
}
