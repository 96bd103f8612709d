package hubvisits

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"presenceboard/internal/directory"
	"presenceboard/internal/presence"
)

// Interval is how long a completed sync remains authoritative before the
// next authenticated request triggers another one.
const Interval = 30 * time.Minute

// Refresher reconciles the hub list against the directory API. The live
// feed reports check-ins as they happen, but cannot tell us about anyone
// who arrived before this process started, so we periodically fetch the
// conclusive list. Runs on demand (needs a user's access token) rather
// than on a timer of its own.
type Refresher struct {
	dir   *directory.Client
	store *presence.Store
	rc    *presence.Reconciler

	mu  sync.Mutex
	due bool
}

func NewRefresher(dir *directory.Client, store *presence.Store, rc *presence.Reconciler) *Refresher {
	return &Refresher{dir: dir, store: store, rc: rc, due: true}
}

// MaybeSync refreshes the hub list if a refresh is due. Concurrent calls
// coalesce: the first caller claims the work, the rest return at once.
func (r *Refresher) MaybeSync(ctx context.Context, accessToken string) {
	r.mu.Lock()
	if !r.due {
		r.mu.Unlock()
		return
	}
	r.due = false
	r.mu.Unlock()

	if err := r.sync(ctx, accessToken); err != nil {
		zap.L().Warn("hub visit sync failed", zap.Error(err))
		r.markDue()
		return
	}
	time.AfterFunc(Interval, r.markDue)
}

func (r *Refresher) markDue() {
	r.mu.Lock()
	r.due = true
	r.mu.Unlock()
}

func (r *Refresher) sync(ctx context.Context, accessToken string) error {
	visits, err := r.dir.HubVisits(ctx, accessToken, directory.Today())
	if err != nil {
		return err
	}

	names := make([]string, 0, len(visits))
	avatars := make(map[string]string)
	for _, v := range visits {
		names = append(names, v.Person.Name)
		if p, ok := r.store.Participant(v.Person.Name); ok && p.AvatarPath != "" {
			continue
		}
		profile, err := r.dir.ProfileByID(ctx, accessToken, v.Person.ID)
		if err != nil {
			zap.L().Warn("avatar backfill failed",
				zap.String("participant", v.Person.Name), zap.Error(err))
			continue
		}
		if profile.ImagePath != "" {
			avatars[v.Person.Name] = profile.ImagePath
		}
	}

	r.rc.SyncHubVisits(names, avatars)
	return nil
}
