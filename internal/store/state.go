package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/samber/lo"

	"github.com/tessro/mewzy/internal/core"
	mewzyerrors "github.com/tessro/mewzy/internal/errors"
	"github.com/tessro/mewzy/internal/urlfix"
)

// Storage keys.
const (
	KeyLastPlayed   = "last_played_song"
	KeyLastQueue    = "last_queue"
	KeyLastIndex    = "last_index"
	KeyLastPosition = "last_active_time"
	KeyVolume       = "player_volume"
	KeyRecent       = "local_recent_history_v1"
	KeyRemoteCache  = "recent_history_cache_v1"
)

// RecentLimit caps the local recent-play log.
const RecentLimit = 50

// Snapshot is the persisted player state.
type Snapshot struct {
	Track    *core.Track
	Queue    []core.Track
	Index    int
	Position float64
	Volume   float64
}

// RecentItem is a track in the local recent-play log.
type RecentItem struct {
	core.Track
	TS int64 `json:"ts"` // unix millis
}

// PlayedAt returns the play time.
func (r RecentItem) PlayedAt() time.Time {
	return time.UnixMilli(r.TS)
}

// State reads and writes player state over a KV.
type State struct {
	kv  KV
	fix *urlfix.Fixer
}

// NewState wraps kv. Tracks read back are sanitized with fix.
func NewState(kv KV, fix *urlfix.Fixer) *State {
	return &State{kv: kv, fix: fix}
}

// KV returns the underlying store.
func (s *State) KV() KV {
	return s.kv
}

// SaveCurrent records the active track, queue and index.
func (s *State) SaveCurrent(ctx context.Context, track core.Track, queue []core.Track, index int) error {
	trackJSON, err := json.Marshal(track)
	if err != nil {
		return fmt.Errorf("marshal track: %w", err)
	}
	if queue == nil {
		queue = []core.Track{}
	}
	queueJSON, err := json.Marshal(queue)
	if err != nil {
		return fmt.Errorf("marshal queue: %w", err)
	}

	if err := s.kv.Set(ctx, KeyLastPlayed, string(trackJSON)); err != nil {
		return err
	}
	if err := s.kv.Set(ctx, KeyLastQueue, string(queueJSON)); err != nil {
		return err
	}
	return s.kv.Set(ctx, KeyLastIndex, strconv.Itoa(index))
}

// SavePosition records the playback position in seconds.
func (s *State) SavePosition(ctx context.Context, seconds float64) error {
	return s.kv.Set(ctx, KeyLastPosition, strconv.FormatFloat(seconds, 'f', -1, 64))
}

// SaveVolume records the volume in [0, 1].
func (s *State) SaveVolume(ctx context.Context, volume float64) error {
	return s.kv.Set(ctx, KeyVolume, strconv.FormatFloat(volume, 'f', -1, 64))
}

// Load reads the persisted state. Missing keys take their defaults (no
// track, empty queue, index -1, position 0, volume 1). Keys that fail to
// decode also fall back to defaults and are reported in the result errors.
func (s *State) Load(ctx context.Context) mewzyerrors.PartialResult[Snapshot] {
	res := mewzyerrors.PartialResult[Snapshot]{Data: Snapshot{Index: -1, Volume: 1}}

	if raw, ok := s.get(ctx, &res, KeyLastPlayed); ok {
		var t core.Track
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			res.AddError(fmt.Errorf("%s: %w", KeyLastPlayed, err))
		} else {
			t = s.fix.Track(t)
			res.Data.Track = &t
		}
	}

	if raw, ok := s.get(ctx, &res, KeyLastQueue); ok {
		var q []core.Track
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			res.AddError(fmt.Errorf("%s: %w", KeyLastQueue, err))
		} else {
			res.Data.Queue = s.fix.Tracks(q)
		}
	}

	if raw, ok := s.get(ctx, &res, KeyLastIndex); ok {
		if i, err := strconv.Atoi(raw); err != nil {
			res.AddError(fmt.Errorf("%s: %w", KeyLastIndex, err))
		} else {
			res.Data.Index = i
		}
	}

	if raw, ok := s.get(ctx, &res, KeyLastPosition); ok {
		if f, err := strconv.ParseFloat(raw, 64); err != nil {
			res.AddError(fmt.Errorf("%s: %w", KeyLastPosition, err))
		} else {
			res.Data.Position = f
		}
	}

	if raw, ok := s.get(ctx, &res, KeyVolume); ok {
		if f, err := strconv.ParseFloat(raw, 64); err != nil {
			res.AddError(fmt.Errorf("%s: %w", KeyVolume, err))
		} else {
			res.Data.Volume = f
		}
	}

	return res
}

func (s *State) get(ctx context.Context, res *mewzyerrors.PartialResult[Snapshot], key string) (string, bool) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		res.AddError(err)
		return "", false
	}
	return raw, ok
}

// Recent returns the local recent-play log, newest first.
func (s *State) Recent(ctx context.Context) ([]RecentItem, error) {
	raw, ok, err := s.kv.Get(ctx, KeyRecent)
	if err != nil || !ok {
		return nil, err
	}
	var items []RecentItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%s: %w", KeyRecent, err)
	}
	for i := range items {
		items[i].Track = s.fix.Track(items[i].Track)
	}
	return items, nil
}

// AddRecent puts track at the head of the recent-play log, dropping any
// older entry with the same id and keeping at most RecentLimit entries.
func (s *State) AddRecent(ctx context.Context, track core.Track, at time.Time) (RecentItem, error) {
	item := RecentItem{Track: track, TS: at.UnixMilli()}

	// A corrupt log is replaced rather than blocking new entries.
	items, _ := s.Recent(ctx)
	items = lo.Filter(items, func(i RecentItem, _ int) bool { return i.ID != track.ID })
	items = append([]RecentItem{item}, items...)
	if len(items) > RecentLimit {
		items = items[:RecentLimit]
	}
	return item, s.writeRecent(ctx, items)
}

// RemoveRecent drops the entry with id from the recent-play log.
func (s *State) RemoveRecent(ctx context.Context, id string) error {
	items, err := s.Recent(ctx)
	if err != nil {
		return err
	}
	return s.writeRecent(ctx, lo.Filter(items, func(i RecentItem, _ int) bool { return i.ID != id }))
}

func (s *State) writeRecent(ctx context.Context, items []RecentItem) error {
	if items == nil {
		items = []RecentItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshal recent: %w", err)
	}
	return s.kv.Set(ctx, KeyRecent, string(data))
}
