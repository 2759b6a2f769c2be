package chat

import (
	"sort"

	"tutorhub/internal/domain"
)

// BuildConversations folds a user's messages, newest first, into one
// summary per counterpart. Unread counts only cover messages addressed to
// userID. The result is ordered by last message time, newest first.
func BuildConversations(userID int64, messages []domain.Message, profiles map[int64]domain.Profile) []domain.Conversation {
	byUser := make(map[int64]*domain.Conversation)
	order := make([]int64, 0)

	for i := range messages {
		m := &messages[i]
		other := m.Counterpart(userID)

		conv, ok := byUser[other]
		if !ok {
			conv = &domain.Conversation{UserID: other}
			if p, found := profiles[other]; found {
				conv.FullName = p.FullName
				conv.AvatarURL = p.AvatarURL
			}
			byUser[other] = conv
			order = append(order, other)
		}
		if m.CreatedAt.After(conv.LastMessageTime) || conv.LastMessageTime.IsZero() {
			conv.LastMessage = m.Content
			conv.LastMessageTime = m.CreatedAt
		}
		if m.RecipientID == userID && !m.IsRead {
			conv.UnreadCount++
		}
	}

	out := make([]domain.Conversation, 0, len(order))
	for _, id := range order {
		out = append(out, *byUser[id])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastMessageTime.After(out[j].LastMessageTime)
	})
	return out
}

func counterparts(userID int64, messages []domain.Message) []int64 {
	seen := make(map[int64]bool)
	var ids []int64
	for i := range messages {
		id := messages[i].Counterpart(userID)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}
