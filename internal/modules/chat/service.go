package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"tutorhub/internal/domain"
	"tutorhub/internal/realtime"
	"tutorhub/internal/repository"
)

const (
	maxMessageRunes = 4000
	messagesTable   = "messages"
)

type Service struct {
	messages  MessageRepository
	profiles  ProfileReader
	publisher Publisher
	logger    *zap.Logger
}

func NewService(messages MessageRepository, profiles ProfileReader, publisher Publisher, logger *zap.Logger) *Service {
	return &Service{
		messages:  messages,
		profiles:  profiles,
		publisher: publisher,
		logger:    logger.With(zap.String("component", "chat")),
	}
}

// FetchConversations returns the user's conversations, newest first.
func (s *Service) FetchConversations(ctx context.Context, userID int64) ([]domain.Conversation, error) {
	msgs, err := s.messages.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	profiles, err := s.profiles.GetByIDs(ctx, counterparts(userID, msgs))
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	return BuildConversations(userID, msgs, profiles), nil
}

func (s *Service) SendMessage(ctx context.Context, senderID, recipientID int64, content string) (*domain.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}
	if utf8.RuneCountInString(content) > maxMessageRunes {
		return nil, ErrMessageTooLong
	}
	if senderID == recipientID {
		return nil, ErrSelfMessage
	}
	if _, err := s.profiles.GetByID(ctx, recipientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecipientMissing
		}
		return nil, err
	}

	m := &domain.Message{SenderID: senderID, RecipientID: recipientID, Content: content}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}

	s.publish(realtime.Event{
		Type:   realtime.EventInsert,
		Table:  messagesTable,
		Record: realtime.RecordOf(m),
	})
	return m, nil
}

func (s *Service) ListThread(ctx context.Context, userID, otherID int64, limit, offset int) ([]domain.Message, error) {
	out, err := s.messages.ListThread(ctx, userID, otherID, limit, offset)
	if out == nil {
		out = []domain.Message{}
	}
	return out, err
}

// MarkMessagesAsRead marks everything senderID sent to userID as read and
// reports how many messages changed.
func (s *Service) MarkMessagesAsRead(ctx context.Context, userID, senderID int64) (int64, error) {
	n, err := s.messages.MarkRead(ctx, userID, senderID)
	if err != nil {
		return 0, fmt.Errorf("mark read: %w", err)
	}
	if n > 0 {
		s.publish(realtime.Event{
			Type:  realtime.EventUpdate,
			Table: messagesTable,
			Record: map[string]any{
				"recipient_id": userID,
				"sender_id":    senderID,
				"is_read":      true,
			},
		})
	}
	return n, nil
}

func (s *Service) UnreadTotal(ctx context.Context, userID int64) (int64, error) {
	return s.messages.CountUnread(ctx, userID)
}

func (s *Service) publish(ev realtime.Event) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ev)
}
