package service

import (
	"context"
	"strings"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

type RequestService struct {
	store  domain.Store
	logger *zerolog.Logger
	now    Clock
}

func NewRequestService(store domain.Store, logger *zerolog.Logger) *RequestService {
	return &RequestService{store: store, logger: logger, now: systemClock}
}

func (s *RequestService) WithClock(now Clock) *RequestService {
	s.now = now
	return s
}

func (s *RequestService) Create(ctx context.Context, userID int64, description string) (*models.ItemRequest, error) {
	if blank(description) {
		return nil, domain.ErrValidation.Withf("description is required")
	}

	req := &models.ItemRequest{
		Description: strings.TrimSpace(description),
		RequestorID: userID,
		Created:     s.now(),
		Items:       []models.Item{},
	}
	err := s.store.RunInTx(ctx, func(tx domain.Store) error {
		if _, err := tx.GetUserByID(ctx, userID); err != nil {
			return err
		}
		return tx.CreateRequest(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

// ListOwn returns the user's requests, newest first, with their answers.
func (s *RequestService) ListOwn(ctx context.Context, userID int64) ([]models.ItemRequest, error) {
	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	requests, err := s.store.ListRequestsByRequestor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, requests)
}

// ListOthers pages through requests made by everyone except userID.
func (s *RequestService) ListOthers(ctx context.Context, userID int64, offset, limit int) ([]models.ItemRequest, error) {
	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	page, err := pageOf(offset, limit)
	if err != nil {
		return nil, err
	}
	requests, err := s.store.ListRequestsExcept(ctx, userID, page)
	if err != nil {
		return nil, err
	}
	return s.attachItems(ctx, requests)
}

func (s *RequestService) Get(ctx context.Context, userID, requestID int64) (*models.ItemRequest, error) {
	if _, err := s.store.GetUserByID(ctx, userID); err != nil {
		return nil, err
	}
	req, err := s.store.GetRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	withItems, err := s.attachItems(ctx, []models.ItemRequest{*req})
	if err != nil {
		return nil, err
	}
	return &withItems[0], nil
}

func (s *RequestService) attachItems(ctx context.Context, requests []models.ItemRequest) ([]models.ItemRequest, error) {
	if len(requests) == 0 {
		return requests, nil
	}

	ids := make([]int64, len(requests))
	for i, r := range requests {
		ids[i] = r.ID
	}
	items, err := s.store.ListItemsByRequests(ctx, ids)
	if err != nil {
		return nil, err
	}

	byRequest := make(map[int64][]models.Item, len(requests))
	for _, item := range items {
		if item.RequestID != nil {
			byRequest[*item.RequestID] = append(byRequest[*item.RequestID], item)
		}
	}
	for i := range requests {
		requests[i].Items = byRequest[requests[i].ID]
		if requests[i].Items == nil {
			requests[i].Items = []models.Item{}
		}
	}
	return requests, nil
}
