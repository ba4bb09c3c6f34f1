// Package identity resolves account owners against the user service.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amadorcf/YourBank-account-service/shared/events"
	"github.com/amadorcf/YourBank-account-service/shared/logger"
	"github.com/amadorcf/YourBank-account-service/shared/models"
	sharedredis "github.com/amadorcf/YourBank-account-service/shared/redis"
	goredis "github.com/redis/go-redis/v9"
)

var ErrUserNotFound = errors.New("user not found")

const userKeyPrefix = "account-service:user:"

// Directory calls the user service and keeps resolved users in Redis for a bounded time.
type Directory struct {
	baseURL string
	client  *http.Client
	cache   *sharedredis.ViewCache[models.User]
}

// NewDirectory builds a Directory. A nil redisClient disables caching.
func NewDirectory(baseURL string, timeout time.Duration, redisClient *goredis.Client, ttl time.Duration) *Directory {
	d := &Directory{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
	if redisClient != nil {
		d.cache = sharedredis.NewViewCache[models.User](redisClient, userKeyPrefix, ttl)
	}
	return d
}

// ResolveUser returns the user record for userID, or ErrUserNotFound when the user
// service has none. Any other error means the directory could not be reached.
func (d *Directory) ResolveUser(ctx context.Context, userID int64) (*models.User, error) {
	key := strconv.FormatInt(userID, 10)
	if d.cache != nil {
		if user, ok := d.cache.Get(ctx, key); ok {
			return user, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"/api/users/"+key, nil)
	if err != nil {
		return nil, fmt.Errorf("build user request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call user service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrUserNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("user service returned status %d", resp.StatusCode)
	}

	var user *models.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("decode user response: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if d.cache != nil {
		_ = d.cache.Set(ctx, key, user)
	}
	return user, nil
}

// HandleUserEvent evicts cached users the user service reports as changed or removed.
func (d *Directory) HandleUserEvent(ctx context.Context, event events.Event) error {
	if event.Type != events.UserUpdated && event.Type != events.UserDeleted {
		return nil
	}
	var data events.UserChangedEvent
	if err := events.DecodeData(event, &data); err != nil {
		return err
	}
	if d.cache != nil {
		// A failed eviction leaves the event pending so the subscriber redelivers it.
		if err := d.cache.Delete(ctx, strconv.FormatInt(data.UserID, 10)); err != nil {
			return err
		}
	}
	logger.Info("evicted cached user", logger.Fields{"userId": data.UserID, "event": event.Type})
	return nil
}
