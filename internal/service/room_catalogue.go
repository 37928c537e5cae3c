package service

import (
	"context"
	"time"

	"github.com/noah-isme/class-scheduler-api/internal/models"
	appErrors "github.com/noah-isme/class-scheduler-api/pkg/errors"
)

type roomLister interface {
	ListDistinctRooms(ctx context.Context, tenant models.Tenant) ([]string, error)
}

// RoomCatalogue caches the distinct room names each tenant has used.
type RoomCatalogue struct {
	rooms roomLister
	cache *CacheService
	ttl   time.Duration
}

// NewRoomCatalogue builds a catalogue backed by the session store and an optional cache.
func NewRoomCatalogue(rooms roomLister, cache *CacheService, ttl time.Duration) *RoomCatalogue {
	return &RoomCatalogue{rooms: rooms, cache: cache, ttl: ttl}
}

func roomCatalogueKey(tenant models.Tenant) string {
	return "scheduler:rooms:" + tenant.CenterID()
}

// Rooms returns the tenant's room names in a stable order.
func (c *RoomCatalogue) Rooms(ctx context.Context, tenant models.Tenant) ([]string, error) {
	key := roomCatalogueKey(tenant)
	var cached []string
	if c.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	rooms, err := c.rooms.ListDistinctRooms(ctx, tenant)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to list rooms")
	}
	if rooms == nil {
		rooms = []string{}
	}
	c.cache.Set(ctx, key, rooms, c.ttl)
	return rooms, nil
}

// Invalidate drops the tenant's cached catalogue after session writes.
func (c *RoomCatalogue) Invalidate(ctx context.Context, tenant models.Tenant) {
	c.cache.Delete(ctx, roomCatalogueKey(tenant))
}
