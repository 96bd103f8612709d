package feed

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"presenceboard/internal/presence"
)

// StalenessCutoff is how old a snapshot entity's last-seen timestamp may
// be before the entity is presumed to be an upstream never-cleared-presence
// bug and dropped. Incremental updates carry no timestamp and are never
// filtered.
const StalenessCutoff = 5 * time.Hour

// Sink consumes the normalizer's output: a reset ahead of each world
// snapshot, then one canonical observation per retained entity.
type Sink interface {
	Reset()
	Observe(presence.Observation)
}

// message is a channel broadcast from the feed: either a one-per-connection
// "world" snapshot or an incremental "entity" update.
type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type worldPayload struct {
	Entities []entity `json:"entities"`
}

// entity is the feed's descriptor for one thing in the virtual space.
// Only Avatar-typed entities describe participants.
type entity struct {
	Type            string  `json:"type"`
	PersonName      string  `json:"person_name"`
	RoomDisplayName *string `json:"zoom_user_display_name"`
	ImagePath       string  `json:"image_path"`
	LastSeenAt      string  `json:"last_seen_at"`
	InTheHub        bool    `json:"in_the_hub"`
	LastBatchName   string  `json:"last_batch_name"`
}

// Normalizer reshapes the feed's two wire shapes into canonical
// observations. It implements actioncable.Handler.
type Normalizer struct {
	sink Sink
	now  func() time.Time

	// seenWorld detects the anomalous second snapshot on one connection.
	// Logged, not fatal: over-processing a duplicate snapshot is bounded
	// while crashing loses all state.
	seenWorld bool
}

func NewNormalizer(sink Sink) *Normalizer {
	return &Normalizer{sink: sink, now: time.Now}
}

func (n *Normalizer) Connected() {
	n.seenWorld = false
}

func (n *Normalizer) Disconnected(err error) {
	zap.L().Warn("presence feed disconnected, data is stale until reconnect", zap.Error(err))
}

func (n *Normalizer) Received(raw json.RawMessage) {
	var msg message
	if err := json.Unmarshal(raw, &msg); err != nil {
		zap.L().Warn("unparseable feed message", zap.Error(err))
		return
	}

	switch msg.Type {
	case "world":
		n.handleWorld(msg.Payload)
	case "entity":
		n.handleEntity(msg.Payload)
	}
}

func (n *Normalizer) handleWorld(payload json.RawMessage) {
	if n.seenWorld {
		zap.L().Warn("second world snapshot without a reconnect")
	}
	n.seenWorld = true

	var world worldPayload
	if err := json.Unmarshal(payload, &world); err != nil {
		zap.L().Warn("unparseable world payload", zap.Error(err))
		return
	}

	// Clear first so the snapshot repopulates from scratch.
	n.sink.Reset()

	for _, e := range world.Entities {
		if e.Type != "Avatar" || e.RoomDisplayName == nil {
			continue
		}
		lastSeen, err := time.Parse(time.RFC3339, e.LastSeenAt)
		if err != nil {
			zap.L().Warn("unparseable last_seen_at",
				zap.String("participant", e.PersonName),
				zap.String("value", e.LastSeenAt))
			continue
		}
		if n.now().Sub(lastSeen) > StalenessCutoff {
			continue
		}
		n.sink.Observe(observationOf(e))
	}
}

func (n *Normalizer) handleEntity(payload json.RawMessage) {
	var e entity
	if err := json.Unmarshal(payload, &e); err != nil {
		zap.L().Warn("unparseable entity payload", zap.Error(err))
		return
	}
	if e.Type != "Avatar" {
		return
	}
	n.sink.Observe(observationOf(e))
}

func observationOf(e entity) presence.Observation {
	room := ""
	if e.RoomDisplayName != nil {
		room = *e.RoomDisplayName
	}
	return presence.Observation{
		Participant: e.PersonName,
		Room:        room,
		AvatarPath:  e.ImagePath,
		InHub:       e.InTheHub,
		Batch:       e.LastBatchName,
	}
}
