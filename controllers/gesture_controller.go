package controllers

import (
	"log"
	"math"
	"sync"

	"vibin_client/models"
)

// GestureState is the resolver's position in the swipe cycle
type GestureState int

const (
	GestureIdle GestureState = iota
	GestureDragging
	GestureDeciding
	GestureSettling
)

func (s GestureState) String() string {
	switch s {
	case GestureIdle:
		return "idle"
	case GestureDragging:
		return "dragging"
	case GestureDeciding:
		return "deciding"
	case GestureSettling:
		return "settling"
	}
	return "unknown"
}

// Offset is a 2D drag displacement
type Offset struct {
	X float64
	Y float64
}

// GestureConfig holds the resolver's fixed distances
type GestureConfig struct {
	Threshold          float64 // |x| a release must exceed to decide
	MaxRotation        float64 // degrees at |x| >= 2*Threshold
	ForcedDisplacement float64 // synthetic x used by ForceDecision
	ExitDistance       float64 // x the card travels to when leaving
}

func DefaultGestureConfig() GestureConfig {
	return GestureConfig{
		Threshold:          120,
		MaxRotation:        15,
		ForcedDisplacement: 500,
		ExitDistance:       800,
	}
}

// GestureResolver turns a drag over the current card, or a forced call,
// into at most one Decision per card.
type GestureResolver struct {
	cfg GestureConfig

	mu      sync.Mutex
	state   GestureState
	cardID  string
	offset  Offset
	pending *models.Decision

	onDecision func(models.Decision)
	onRemoved  func(subjectID string)
}

// NewGestureResolver creates a resolver. onDecision always runs before
// onRemoved for the same card; both run without the resolver's lock held.
func NewGestureResolver(cfg GestureConfig, onDecision func(models.Decision), onRemoved func(subjectID string)) *GestureResolver {
	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultGestureConfig().Threshold
	}
	if cfg.ForcedDisplacement <= cfg.Threshold {
		cfg.ForcedDisplacement = cfg.Threshold * 4
	}
	if cfg.ExitDistance <= 0 {
		cfg.ExitDistance = cfg.ForcedDisplacement * 1.6
	}
	return &GestureResolver{cfg: cfg, onDecision: onDecision, onRemoved: onRemoved}
}

// SetCard makes id the current card and resets the transient state.
// An empty id means there is no card.
func (g *GestureResolver) SetCard(id string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cardID = id
	g.state = GestureIdle
	g.offset = Offset{}
	g.pending = nil
}

// Begin starts a drag. It refuses while a vertical scroll is active or when
// the first movement is not predominantly horizontal.
func (g *GestureResolver) Begin(dx, dy float64, scrollActive bool) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != GestureIdle || g.cardID == "" || scrollActive {
		return false
	}
	if math.Abs(dx) <= 2*math.Abs(dy) {
		return false
	}
	g.state = GestureDragging
	g.offset = Offset{X: dx, Y: dy}
	return true
}

// Move updates the drag offset
func (g *GestureResolver) Move(dx, dy float64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != GestureDragging {
		return ErrInvalidTransition
	}
	g.offset = Offset{X: dx, Y: dy}
	return nil
}

// Release ends a drag. Past the threshold it returns the decision and the
// resolver waits in GestureDeciding; otherwise the card springs back.
func (g *GestureResolver) Release() (*models.Decision, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != GestureDragging {
		return nil, ErrInvalidTransition
	}

	var t models.DecisionType
	switch {
	case g.offset.X > g.cfg.Threshold:
		t = models.DecisionLike
	case g.offset.X < -g.cfg.Threshold:
		t = models.DecisionDislike
	default:
		g.state = GestureIdle
		g.offset = Offset{}
		return nil, nil
	}

	g.pending = &models.Decision{Type: t, SubjectID: g.cardID}
	g.state = GestureDeciding
	d := *g.pending
	return &d, nil
}

// ForceDecision decides the current card without a drag. It is accepted
// from idle and also while dragging, in which case the drag is abandoned and
// the forced decision wins.
func (g *GestureResolver) ForceDecision(t models.DecisionType) (*models.Decision, error) {
	if !t.Valid() {
		return nil, ErrInvalidDecision
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cardID == "" {
		log.Printf("⚠️ Forced %s with no current card, ignoring", t)
		return nil, ErrNoCard
	}
	if g.state == GestureDeciding || g.state == GestureSettling {
		return nil, ErrDecisionInFlight
	}

	x := g.cfg.ForcedDisplacement
	if t == models.DecisionDislike {
		x = -x
	}
	g.offset = Offset{X: x}
	g.pending = &models.Decision{Type: t, SubjectID: g.cardID}
	g.state = GestureDeciding
	d := *g.pending
	return &d, nil
}

// StartExit begins the off-screen animation and returns its target offset
func (g *GestureResolver) StartExit() (Offset, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != GestureDeciding || g.pending == nil {
		return Offset{}, ErrInvalidTransition
	}
	x := g.cfg.ExitDistance
	if g.pending.Type == models.DecisionDislike {
		x = -x
	}
	g.state = GestureSettling
	return Offset{X: x, Y: g.offset.Y}, nil
}

// CompleteExit finishes the cycle: the decision is emitted, then the
// removal, and the resolver is idle with no card until SetCard.
func (g *GestureResolver) CompleteExit() error {
	g.mu.Lock()
	if g.state != GestureSettling || g.pending == nil {
		g.mu.Unlock()
		return ErrInvalidTransition
	}
	decision := *g.pending
	g.pending = nil
	g.state = GestureIdle
	g.offset = Offset{}
	g.cardID = ""
	g.mu.Unlock()

	if g.onDecision != nil {
		g.onDecision(decision)
	}
	if g.onRemoved != nil {
		g.onRemoved(decision.SubjectID)
	}
	return nil
}

func (g *GestureResolver) State() GestureState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *GestureResolver) CardID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cardID
}

func (g *GestureResolver) Offset() Offset {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.offset
}

// Rotation is the card tilt in degrees for the current offset
func (g *GestureResolver) Rotation() float64 {
	return RotationFor(g.Offset().X, g.cfg)
}

func (g *GestureResolver) LikeOpacity() float64 {
	return LikeOpacityFor(g.Offset().X, g.cfg.Threshold)
}

func (g *GestureResolver) DislikeOpacity() float64 {
	return DislikeOpacityFor(g.Offset().X, g.cfg.Threshold)
}

// RotationFor maps x in [-2T, 2T] linearly onto [-MaxRotation, MaxRotation]
func RotationFor(x float64, cfg GestureConfig) float64 {
	return cfg.MaxRotation * clamp(x/(2*cfg.Threshold), -1, 1)
}

// LikeOpacityFor fades the like indicator in over [0, T]
func LikeOpacityFor(x, threshold float64) float64 {
	return clamp(x/threshold, 0, 1)
}

// DislikeOpacityFor fades the dislike indicator in over [-T, 0]
func DislikeOpacityFor(x, threshold float64) float64 {
	return clamp(-x/threshold, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
