package service

import (
	"strings"
	"time"

	"shareit/internal/domain"
	"shareit/internal/models"

	"github.com/rs/zerolog"
)

// Clock returns the current instant. Operations read it once per call.
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now().UTC()
}

func pageOf(offset, limit int) (models.Page, error) {
	p := models.Page{Offset: offset, Limit: limit}
	if !p.Valid() {
		return models.Page{}, domain.ErrInvalidPage.Withf("invalid page from=%d size=%d", offset, limit)
	}
	return p, nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func publish(events domain.EventPublisher, logger *zerolog.Logger, eventType string, payload any) {
	if events == nil {
		return
	}
	if err := events.PublishJSON(eventType, payload); err != nil {
		logger.Error().Err(err).Str("event_type", eventType).Msg("publish event error")
	}
}
