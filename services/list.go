package services

import (
	"context"
	"strings"
	"time"

	"liist/models"
)

type ItemStore interface {
	Create(ctx context.Context, item *models.ListItem) error
	ListByOwner(ctx context.Context, ownerID string) ([]models.ListItem, error)
	GetOwned(ctx context.Context, ownerID string, id int64) (*models.ListItem, error)
	UpdateText(ctx context.Context, ownerID string, id int64, text string, updatedAt time.Time) (*models.ListItem, error)
	Delete(ctx context.Context, ownerID string, id int64) error
}

// ListService manages one user's grocery list. Every call is scoped to
// ownerID; items of other users behave as if they did not exist.
type ListService struct {
	items ItemStore
	now   func() time.Time
}

func NewListService(items ItemStore) *ListService {
	return &ListService{items: items, now: time.Now}
}

// WithClock replaces the time source used for updated_at; used by tests.
func (s *ListService) WithClock(now func() time.Time) *ListService {
	s.now = now
	return s
}

func (s *ListService) Add(ctx context.Context, ownerID, text string) (*models.ListItem, error) {
	text, err := cleanText(text)
	if err != nil {
		return nil, err
	}
	item := &models.ListItem{
		OwnerID:   ownerID,
		Text:      text,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// List returns the owner's items ordered by updated_at ascending, so an
// edited item moves to the end of the list.
func (s *ListService) List(ctx context.Context, ownerID string) ([]models.ListItem, error) {
	return s.items.ListByOwner(ctx, ownerID)
}

func (s *ListService) Get(ctx context.Context, ownerID string, id int64) (*models.ListItem, error) {
	return s.items.GetOwned(ctx, ownerID, id)
}

func (s *ListService) Update(ctx context.Context, ownerID string, id int64, text string) (*models.ListItem, error) {
	text, err := cleanText(text)
	if err != nil {
		return nil, err
	}
	return s.items.UpdateText(ctx, ownerID, id, text, s.now().UTC())
}

func (s *ListService) Delete(ctx context.Context, ownerID string, id int64) error {
	return s.items.Delete(ctx, ownerID, id)
}

func cleanText(text string) (string, error) {
	req := models.ItemRequest{Text: strings.TrimSpace(text)}
	if err := validateStruct(req); err != nil {
		return "", err
	}
	return req.Text, nil
}
