package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable is returned by operations that need Redis when none is
// configured.
var ErrUnavailable = errors.New("redis unavailable")

const (
	UserKeyPrefix      = "user:%d"
	BlacklistKeyPrefix = "blacklist:%s"
	FacultiesKey       = "lookup:faculties"
	DepartmentsKey     = "lookup:departments:%d"
	WSTicketKeyPrefix  = "ws_ticket:%s"
)

const (
	UserTTL   = 5 * time.Minute
	LookupTTL = 30 * time.Minute
	// WSTicketTTL bounds the gap between issuing a ticket and the upgrade.
	WSTicketTTL = 30 * time.Second
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func BlacklistKey(jti string) string {
	return fmt.Sprintf(BlacklistKeyPrefix, jti)
}

func WSTicketKey(ticket string) string {
	return fmt.Sprintf(WSTicketKeyPrefix, ticket)
}

// DepartmentsKeyFor keys the department list of one faculty; 0 means all.
func DepartmentsKeyFor(facultyID uint) string {
	return fmt.Sprintf(DepartmentsKey, facultyID)
}

func Invalidate(ctx context.Context, keys ...string) {
	if client != nil && len(keys) > 0 {
		client.Del(ctx, keys...)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

// InvalidateLookups drops the cached faculty list and the department lists
// for facultyID and for all faculties.
func InvalidateLookups(ctx context.Context, facultyID uint) {
	Invalidate(ctx, FacultiesKey, DepartmentsKeyFor(0), DepartmentsKeyFor(facultyID))
}

// Blacklist marks a token id as revoked until ttl elapses.
func Blacklist(ctx context.Context, rdb *redis.Client, jti string, ttl time.Duration) error {
	if rdb == nil || jti == "" || ttl <= 0 {
		return nil
	}
	return rdb.Set(ctx, BlacklistKey(jti), "1", ttl).Err()
}

// IsBlacklisted reports whether jti was revoked. Lookup failures report false.
func IsBlacklisted(ctx context.Context, rdb *redis.Client, jti string) bool {
	if rdb == nil || jti == "" {
		return false
	}
	n, err := rdb.Exists(ctx, BlacklistKey(jti)).Result()
	return err == nil && n > 0
}

// StoreWSTicket binds a single-use WebSocket ticket to userID.
func StoreWSTicket(ctx context.Context, rdb *redis.Client, ticket string, userID uint) error {
	if rdb == nil {
		return ErrUnavailable
	}
	return rdb.Set(ctx, WSTicketKey(ticket), userID, WSTicketTTL).Err()
}

// ConsumeWSTicket atomically reads and deletes a ticket. Unknown, expired and
// already used tickets report false.
func ConsumeWSTicket(ctx context.Context, rdb *redis.Client, ticket string) (uint, bool) {
	if rdb == nil || ticket == "" {
		return 0, false
	}
	id, err := rdb.GetDel(ctx, WSTicketKey(ticket)).Uint64()
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
