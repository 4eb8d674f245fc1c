package controllers

import (
	"context"
	"errors"
	"log"
	"sync"

	"vibin_client/models"
	"vibin_client/utils"
)

// LikeRecorder records likes with the remote API
type LikeRecorder interface {
	Like(ctx context.Context, fromID, toID string) (*models.LikeResponse, error)
	Unlike(ctx context.Context, fromID, toID string) (*models.MessageResponse, error)
}

// DiscoverController drives the discovery screen. The resolver decides the
// head card, the decision is recorded remotely, and the feed advances once
// the card has left the screen.
type DiscoverController struct {
	ctx      context.Context
	viewerID string

	feed     *FeedController
	likes    LikeRecorder
	notifier utils.Notifier
	resolver *GestureResolver

	inflight sync.WaitGroup

	// OnDecision, when set, sees every decision after it is dispatched
	OnDecision func(models.Decision)
}

func NewDiscoverController(ctx context.Context, viewerID string, feed *FeedController, likes LikeRecorder, notifier utils.Notifier, cfg GestureConfig) *DiscoverController {
	if notifier == nil {
		notifier = utils.LogNotifier{}
	}
	d := &DiscoverController{
		ctx:      ctx,
		viewerID: viewerID,
		feed:     feed,
		likes:    likes,
		notifier: notifier,
	}
	d.resolver = NewGestureResolver(cfg, d.handleDecision, d.handleRemoved)
	feed.OnHeadChange = d.resolver.SetCard
	if head, ok := feed.Current(); ok {
		d.resolver.SetCard(head.ID)
	}
	return d
}

// Start loads the first page
func (d *DiscoverController) Start() error {
	return d.feed.Refresh(d.ctx, d.viewerID)
}

func (d *DiscoverController) handleDecision(dec models.Decision) {
	log.Printf("🔄 %s on %s", dec.Type, dec.SubjectID)
	if dec.Type == models.DecisionLike {
		d.inflight.Add(1)
		go func() {
			defer d.inflight.Done()
			d.recordLike(dec.SubjectID)
		}()
	}
	if d.OnDecision != nil {
		d.OnDecision(dec)
	}
}

func (d *DiscoverController) recordLike(subjectID string) {
	resp, err := d.likes.Like(d.ctx, d.viewerID, subjectID)
	if err != nil {
		log.Printf("❌ Failed to like %s: %v", subjectID, err)
		d.notifier.Notify(utils.ErrorNotice("Failed to send like", err))
		return
	}
	if resp.Matched {
		log.Printf("✅ Mutual match with %s", subjectID)
		d.notifier.Notify(utils.InfoNotice("It's a match!"))
	}
}

func (d *DiscoverController) handleRemoved(subjectID string) {
	head, ok := d.feed.Current()
	if !ok || head.ID != subjectID {
		log.Printf("⚠️ Removed card %s is not the head, skipping advance", subjectID)
		return
	}
	d.feed.Advance(d.ctx, d.viewerID)
}

// BeginDrag starts a drag over the head card
func (d *DiscoverController) BeginDrag(dx, dy float64, scrollActive bool) bool {
	return d.resolver.Begin(dx, dy, scrollActive)
}

func (d *DiscoverController) Drag(dx, dy float64) error {
	return d.resolver.Move(dx, dy)
}

// ReleaseDrag ends a drag. A decision starts the exit animation and the
// returned offset is where the card should travel to.
func (d *DiscoverController) ReleaseDrag() (*models.Decision, Offset, error) {
	dec, err := d.resolver.Release()
	if err != nil || dec == nil {
		return nil, Offset{}, err
	}
	exit, err := d.resolver.StartExit()
	return dec, exit, err
}

// ForceDecision decides the head card as if swiped, e.g. from a button.
// With no card it is a logged no-op.
func (d *DiscoverController) ForceDecision(t models.DecisionType) (*models.Decision, Offset, error) {
	dec, err := d.resolver.ForceDecision(t)
	if errors.Is(err, ErrNoCard) {
		return nil, Offset{}, nil
	}
	if err != nil {
		return nil, Offset{}, err
	}
	exit, err := d.resolver.StartExit()
	return dec, exit, err
}

// AnimationDone is called when the exit animation finishes
func (d *DiscoverController) AnimationDone() error {
	return d.resolver.CompleteExit()
}

// Decide forces a decision and completes it without animating
func (d *DiscoverController) Decide(t models.DecisionType) (*models.Decision, error) {
	dec, _, err := d.ForceDecision(t)
	if err != nil || dec == nil {
		return dec, err
	}
	return dec, d.AnimationDone()
}

// Unlike withdraws a like sent earlier
func (d *DiscoverController) Unlike(ctx context.Context, subjectID string) error {
	if d.viewerID == "" {
		d.notifier.Notify(utils.ErrorNotice("Please sign in", ErrMissingViewer))
		return ErrMissingViewer
	}
	if _, err := d.likes.Unlike(ctx, d.viewerID, subjectID); err != nil {
		d.notifier.Notify(utils.ErrorNotice("Failed to remove like", err))
		return err
	}
	return nil
}

func (d *DiscoverController) Resolver() *GestureResolver {
	return d.resolver
}

func (d *DiscoverController) Feed() *FeedController {
	return d.feed
}

// Wait blocks until like calls and feed backfills have finished
func (d *DiscoverController) Wait() {
	d.inflight.Wait()
	d.feed.Wait()
}
