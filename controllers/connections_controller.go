package controllers

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"vibin_client/models"
	"vibin_client/utils"
)

// MaxLikePages bounds how many received-likes pages one Load walks
const MaxLikePages = 10

// ConnectionsSource is the remote side of the connections screen
type ConnectionsSource interface {
	GetReceivedLikes(ctx context.Context, userID string, page, limit int) (*models.ReceivedLikesPage, error)
	GetUserMatches(ctx context.Context, userID string) ([]models.MatchedProfile, error)
	ApproveMatch(ctx context.Context, viewerID, otherID string) (*models.ApproveResponse, error)
}

// ConnectionsController keeps the merged, sorted list of pending likes and
// mutual matches for the viewer.
type ConnectionsController struct {
	source   ConnectionsSource
	notifier utils.Notifier
	limit    int

	mu      sync.Mutex
	records []models.ConnectionRecord
}

func NewConnectionsController(source ConnectionsSource, notifier utils.Notifier, limit int) *ConnectionsController {
	if limit <= 0 {
		limit = models.DefaultPageSize
	}
	if notifier == nil {
		notifier = utils.LogNotifier{}
	}
	return &ConnectionsController{source: source, notifier: notifier, limit: limit}
}

// MergeConnections combines matches and likers into one list keyed by the
// other user's id. A match wins over a pending like for the same id. A match
// without a match id is dropped, so a pending like for that user is kept.
func MergeConnections(matches []models.MatchedProfile, likers []models.Liker) []models.ConnectionRecord {
	byID := make(map[string]int, len(matches)+len(likers))
	out := make([]models.ConnectionRecord, 0, len(matches)+len(likers))

	for _, m := range matches {
		if _, exists := byID[m.ID]; exists || m.ID == "" {
			continue
		}
		if m.MatchID == "" {
			log.Printf("⚠️ Skipping match with %s: no match id", m.ID)
			continue
		}
		byID[m.ID] = len(out)
		out = append(out, models.ConnectionRecord{
			ID:            m.ID,
			Kind:          models.ConnectionKindMatch,
			Profile:       m.CandidateProfile,
			IsApproved:    true,
			IsMutualMatch: true,
			MatchID:       m.MatchID,
			SortDate:      m.MatchedAt,
		})
	}

	for _, l := range likers {
		if _, exists := byID[l.ID]; exists || l.ID == "" {
			continue
		}
		byID[l.ID] = len(out)
		out = append(out, models.ConnectionRecord{
			ID:         l.ID,
			Kind:       models.ConnectionKindLike,
			Profile:    l.CandidateProfile,
			IsLikedYou: true,
			SortDate:   l.LikedAt,
		})
	}

	SortConnections(out)
	return out
}

// SortConnections orders records newest first. Equal dates fall back to id
// so the order is deterministic.
func SortConnections(records []models.ConnectionRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].SortDate.Equal(records[j].SortDate) {
			return records[i].SortDate.After(records[j].SortDate)
		}
		return records[i].ID < records[j].ID
	})
}

// Load fetches matches and received likes concurrently and replaces the
// list with their merge. On failure the list is left as it was.
func (c *ConnectionsController) Load(ctx context.Context, viewerID string) error {
	if viewerID == "" {
		c.notifier.Notify(utils.ErrorNotice("Please sign in to see your connections", ErrMissingViewer))
		return ErrMissingViewer
	}
	log.Printf("🔍 Loading connections for %s", viewerID)

	var (
		matches []models.MatchedProfile
		likers  []models.Liker
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := c.source.GetUserMatches(gctx, viewerID)
		if err != nil {
			return err
		}
		matches = m
		return nil
	})
	g.Go(func() error {
		l, err := c.receivedLikes(gctx, viewerID)
		if err != nil {
			return err
		}
		likers = l
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Printf("❌ Failed to load connections: %v", err)
		c.notifier.Notify(utils.ErrorNotice("Failed to load connections", err))
		return err
	}

	merged := MergeConnections(matches, likers)

	c.mu.Lock()
	c.records = merged
	c.mu.Unlock()

	log.Printf("✅ Loaded %d connections (%d matches, %d likes)", len(merged), len(matches), len(likers))
	return nil
}

func (c *ConnectionsController) receivedLikes(ctx context.Context, viewerID string) ([]models.Liker, error) {
	var all []models.Liker
	for page := 1; page <= MaxLikePages; page++ {
		resp, err := c.source.GetReceivedLikes(ctx, viewerID, page, c.limit)
		if err != nil {
			return nil, err
		}
		all = append(all, resp.Likers...)
		if page >= resp.TotalPages || len(resp.Likers) == 0 {
			break
		}
	}
	return all, nil
}

// Approve accepts the pending like from otherID. The record is only
// touched once the remote call succeeds.
func (c *ConnectionsController) Approve(ctx context.Context, viewerID, otherID string) error {
	if viewerID == "" {
		c.notifier.Notify(utils.ErrorNotice("Please sign in to approve", ErrMissingViewer))
		return ErrMissingViewer
	}

	c.mu.Lock()
	_, found := c.indexLocked(otherID)
	c.mu.Unlock()
	if !found {
		log.Printf("⚠️ Approve for unknown connection %s", otherID)
		return fmt.Errorf("%w: %s", ErrUnknownConnection, otherID)
	}

	resp, err := c.source.ApproveMatch(ctx, viewerID, otherID)
	if err != nil {
		log.Printf("❌ Failed to approve %s: %v", otherID, err)
		c.notifier.Notify(utils.ErrorNotice("Failed to approve", err))
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	i, found := c.indexLocked(otherID)
	if !found {
		// list was reloaded without this user while the call was out
		return nil
	}
	rec := &c.records[i]
	rec.IsApproved = true
	if resp.Matched && resp.Match != nil {
		rec.IsMutualMatch = true
		rec.Kind = models.ConnectionKindMatch
		rec.MatchID = resp.Match.ID
		rec.SortDate = resp.Match.MatchedAt
		log.Printf("✅ Mutual match %s with %s", resp.Match.ID, otherID)
	}
	SortConnections(c.records)
	return nil
}

func (c *ConnectionsController) indexLocked(id string) (int, bool) {
	for i := range c.records {
		if c.records[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// Records returns a copy of the current list
func (c *ConnectionsController) Records() []models.ConnectionRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.ConnectionRecord, len(c.records))
	copy(out, c.records)
	return out
}

// Record returns the entry for id
func (c *ConnectionsController) Record(id string) (models.ConnectionRecord, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i, ok := c.indexLocked(id)
	if !ok {
		return models.ConnectionRecord{}, false
	}
	return c.records[i], true
}
