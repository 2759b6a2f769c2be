package chat

import (
	"context"

	"tutorhub/internal/domain"
	"tutorhub/internal/realtime"
)

type MessageRepository interface {
	Create(ctx context.Context, m *domain.Message) error
	ListForUser(ctx context.Context, userID int64) ([]domain.Message, error)
	ListThread(ctx context.Context, a, b int64, limit, offset int) ([]domain.Message, error)
	MarkRead(ctx context.Context, userID, senderID int64) (int64, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
}

type ProfileReader interface {
	GetByID(ctx context.Context, id int64) (*domain.Profile, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]domain.Profile, error)
}

type Publisher interface {
	Publish(ev realtime.Event)
}
