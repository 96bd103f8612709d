package notes

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTL is how long a note lives after its last edit. The original hourly
// sweep is replaced by Redis key expiry.
const TTL = 4 * time.Hour

const keyPrefix = "note:"

// Note is one room's free-text note. Content is stored raw; escaping is
// the renderer's job.
type Note struct {
	Content  string
	EditedAt time.Time
}

// Store keeps room notes in Redis so they survive a dashboard restart but
// still age out on their own.
type Store struct {
	rdc *redis.Client
}

func NewStore(rdc *redis.Client) *Store {
	return &Store{rdc: rdc}
}

// Set writes the room's note and restarts its expiry clock. A blank
// (whitespace-only) note clears the room's note instead.
func (s *Store) Set(ctx context.Context, room, content string) error {
	if strings.TrimSpace(content) == "" {
		return s.rdc.Del(ctx, keyPrefix+room).Err()
	}
	key := keyPrefix + room
	if err := s.rdc.HSet(ctx, key,
		"content", content,
		"edited_at", strconv.FormatInt(time.Now().Unix(), 10),
	).Err(); err != nil {
		return err
	}
	return s.rdc.Expire(ctx, key, TTL).Err()
}

// Get returns the room's note, reporting whether one exists.
func (s *Store) Get(ctx context.Context, room string) (Note, bool, error) {
	data, err := s.rdc.HGetAll(ctx, keyPrefix+room).Result()
	if err != nil || len(data) == 0 {
		return Note{}, false, err
	}
	ts, _ := strconv.ParseInt(data["edited_at"], 10, 64)
	return Note{
		Content:  data["content"],
		EditedAt: time.Unix(ts, 0).UTC(),
	}, true, nil
}
