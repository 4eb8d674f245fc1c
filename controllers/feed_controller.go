package controllers

import (
	"context"
	"log"
	"sync"

	"vibin_client/models"
	"vibin_client/utils"
)

// RecommendationSource serves pages of the candidate feed
type RecommendationSource interface {
	GetRecommendations(ctx context.Context, viewerID string, page, limit int) (*models.RecommendationsPage, error)
}

// PhotoResolver turns stored image keys into displayable URLs
type PhotoResolver interface {
	ResolvePhotos(ctx context.Context, keys []string) []string
}

// FeedStatus is what the discovery screen should display
type FeedStatus string

const (
	FeedIdle      FeedStatus = "idle"
	FeedLoading   FeedStatus = "loading"
	FeedReady     FeedStatus = "ready"
	FeedExhausted FeedStatus = "exhausted"
)

// FeedController owns the candidate queue and its pagination cursor.
// At most one page fetch runs at a time.
type FeedController struct {
	source   RecommendationSource
	photos   PhotoResolver
	notifier utils.Notifier

	mu      sync.Mutex
	queue   []models.CandidateProfile
	seen    map[string]struct{}
	cursor  models.PaginationCursor
	loading bool
	loaded  bool
	gen     int

	backfills sync.WaitGroup

	// OnHeadChange is called with the new head id ("" when empty)
	// whenever the current card changes.
	OnHeadChange func(id string)
}

func NewFeedController(source RecommendationSource, photos PhotoResolver, notifier utils.Notifier, limit int) *FeedController {
	if limit <= 0 {
		limit = models.DefaultPageSize
	}
	if notifier == nil {
		notifier = utils.LogNotifier{}
	}
	return &FeedController{
		source:   source,
		photos:   photos,
		notifier: notifier,
		seen:     make(map[string]struct{}),
		cursor:   models.PaginationCursor{Limit: limit, HasMore: true},
	}
}

// LoadPage fetches one page and merges it into the queue. Page 1 replaces
// the queue; later pages append only ids not seen since the last refresh.
func (f *FeedController) LoadPage(ctx context.Context, viewerID string, page int) error {
	if viewerID == "" {
		f.notifier.Notify(utils.ErrorNotice("Please sign in to see recommendations", ErrMissingViewer))
		return ErrMissingViewer
	}
	if page < 1 {
		page = 1
	}

	f.mu.Lock()
	if f.loading {
		f.mu.Unlock()
		log.Printf("⚠️ Page %d requested while a fetch is in flight, skipping", page)
		return ErrFetchInFlight
	}
	f.loading = true
	gen := f.gen
	limit := f.cursor.Limit
	f.mu.Unlock()

	resp, err := f.source.GetRecommendations(ctx, viewerID, page, limit)
	if err == nil && resp == nil {
		resp = &models.RecommendationsPage{Page: page}
	}
	if err == nil && f.photos != nil {
		for i := range resp.Users {
			resp.Users[i].Images = f.photos.ResolvePhotos(ctx, resp.Users[i].Images)
		}
	}

	f.mu.Lock()
	if gen != f.gen {
		f.mu.Unlock()
		log.Printf("⚠️ Discarding stale page %d after refresh", page)
		return nil
	}
	f.loading = false

	if err != nil {
		f.cursor.HasMore = false
		f.loaded = true
		f.mu.Unlock()
		log.Printf("❌ Failed to load page %d: %v", page, err)
		f.notifier.Notify(utils.ErrorNotice("Failed to load recommendations", err))
		return err
	}

	before := f.headLocked()
	if page == 1 {
		f.queue = nil
		f.seen = make(map[string]struct{})
	}
	added := 0
	for _, u := range resp.Users {
		if u.ID == "" {
			continue
		}
		if _, dup := f.seen[u.ID]; dup {
			continue
		}
		f.seen[u.ID] = struct{}{}
		f.queue = append(f.queue, u)
		added++
	}

	current := resp.Page
	if current < 1 {
		current = page
	}
	f.cursor.Page = page
	f.cursor.HasMore = current < resp.TotalPages
	if page == 1 && len(resp.Users) == 0 {
		f.cursor.HasMore = false
	}
	f.loaded = true
	after := f.headLocked()
	f.mu.Unlock()

	log.Printf("✅ Loaded page %d: %d new candidates (hasMore=%t)", page, added, current < resp.TotalPages)
	f.headChanged(before, after)
	return nil
}

// Advance drops the head of the queue and starts a backfill when the queue
// runs low. The backfill keeps fetching one page after another while each
// page leaves the queue at or below the refill threshold, so a page made up
// mostly of already-seen ids does not stall the feed until the next swipe.
func (f *FeedController) Advance(ctx context.Context, viewerID string) {
	f.mu.Lock()
	if len(f.queue) == 0 {
		f.mu.Unlock()
		return
	}
	before := f.headLocked()
	f.queue = f.queue[1:]
	after := f.headLocked()
	needMore := f.needsBackfillLocked()
	f.mu.Unlock()

	f.headChanged(before, after)
	if needMore {
		f.startBackfill(ctx, viewerID)
	}
}

// Refresh resets the cursor, clears the queue and loads page 1. A fetch
// still in flight is superseded and its result dropped.
func (f *FeedController) Refresh(ctx context.Context, viewerID string) error {
	f.mu.Lock()
	before := f.headLocked()
	f.gen++
	f.queue = nil
	f.seen = make(map[string]struct{})
	f.cursor = models.PaginationCursor{Limit: f.cursor.Limit, HasMore: true}
	f.loading = false
	f.loaded = false
	f.mu.Unlock()

	f.headChanged(before, "")
	return f.LoadPage(ctx, viewerID, 1)
}

func (f *FeedController) startBackfill(ctx context.Context, viewerID string) {
	f.backfills.Add(1)
	go func() {
		defer f.backfills.Done()
		for {
			f.mu.Lock()
			next := f.cursor.Page + 1
			f.mu.Unlock()

			log.Printf("🔄 Queue low, fetching page %d", next)
			if err := f.LoadPage(ctx, viewerID, next); err != nil {
				return
			}

			f.mu.Lock()
			again := f.needsBackfillLocked() && f.cursor.Page == next
			f.mu.Unlock()
			if !again {
				return
			}
		}
	}()
}

func (f *FeedController) needsBackfillLocked() bool {
	return f.loaded && f.cursor.HasMore && !f.loading && len(f.queue) <= f.cursor.RefillThreshold()
}

func (f *FeedController) headLocked() string {
	if len(f.queue) == 0 {
		return ""
	}
	return f.queue[0].ID
}

func (f *FeedController) headChanged(before, after string) {
	if before != after && f.OnHeadChange != nil {
		f.OnHeadChange(after)
	}
}

// Current returns the head of the queue
func (f *FeedController) Current() (models.CandidateProfile, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.queue) == 0 {
		return models.CandidateProfile{}, false
	}
	return f.queue[0], true
}

// Empty reports whether there is no card to show
func (f *FeedController) Empty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue) == 0
}

func (f *FeedController) Queue() []models.CandidateProfile {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.CandidateProfile, len(f.queue))
	copy(out, f.queue)
	return out
}

func (f *FeedController) Cursor() models.PaginationCursor {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cursor
}

// Status distinguishes a loading feed from one with nothing left to show
func (f *FeedController) Status() FeedStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch {
	case len(f.queue) > 0:
		return FeedReady
	case f.loading:
		return FeedLoading
	case f.loaded && !f.cursor.HasMore:
		return FeedExhausted
	}
	return FeedIdle
}

// Wait blocks until background backfills have finished
func (f *FeedController) Wait() {
	f.backfills.Wait()
}
