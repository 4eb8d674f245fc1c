package controllers

import (
	"context"
	"encoding/json"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"vibin_client/models"
	"vibin_client/socket"
	"vibin_client/utils"
)

// Channel is a realtime connection scoped to one chat
type Channel interface {
	On(event string, h socket.Handler)
	Start()
	Emit(ctx context.Context, event string, payload any) error
	Close() error
}

// ChannelDialer opens a new Channel
type ChannelDialer func(ctx context.Context) (Channel, error)

// HistorySource serves the stored messages of a match
type HistorySource interface {
	GetChatHistory(ctx context.Context, matchID, userID string) ([]models.ChatMessage, error)
}

// ChatSession is one open chat: the realtime channel for a match and its
// message log. Sent messages appear immediately with status "sending" and
// are replaced in place by the server echo.
type ChatSession struct {
	viewerID string
	matchID  string
	peerID   string

	dial     ChannelDialer
	history  HistorySource
	notifier utils.Notifier

	mu       sync.Mutex
	channel  Channel
	joined   bool
	ready    chan struct{}
	messages []models.ChatMessage
	cancel   context.CancelFunc

	now func() time.Time
}

func NewChatSession(viewerID, matchID, peerID string, dial ChannelDialer, history HistorySource, notifier utils.Notifier) *ChatSession {
	if notifier == nil {
		notifier = utils.LogNotifier{}
	}
	return &ChatSession{
		viewerID: viewerID,
		matchID:  matchID,
		peerID:   peerID,
		dial:     dial,
		history:  history,
		notifier: notifier,
		ready:    make(chan struct{}),
		now:      time.Now,
	}
}

// Join opens the channel and asks to join the match room. The history is
// loaded once the server acknowledges the join. Calling Join again drops
// the previous channel first.
func (c *ChatSession) Join(ctx context.Context) error {
	if c.viewerID == "" {
		c.notifier.Notify(utils.ErrorNotice("Please sign in to chat", ErrMissingViewer))
		return ErrMissingViewer
	}
	log.Printf("🔍 Joining chat %s as %s", c.matchID, c.viewerID)

	ch, err := c.dial(ctx)
	if err != nil {
		log.Printf("❌ Failed to connect to chat %s: %v", c.matchID, err)
		c.notifier.Notify(utils.ErrorNotice("Could not connect to chat", err))
		return err
	}

	sessionCtx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	old, oldCancel := c.channel, c.cancel
	c.channel = ch
	c.cancel = cancel
	c.joined = false
	c.ready = make(chan struct{})
	c.mu.Unlock()

	if old != nil {
		oldCancel()
		old.Close()
	}

	ch.On(socket.EventChatJoined, func(data json.RawMessage) { c.onJoined(sessionCtx, ch, data) })
	ch.On(socket.EventReceiveMessage, func(data json.RawMessage) { c.onReceive(ch, data) })
	ch.On(socket.EventChatError, func(data json.RawMessage) { c.onChatError(ch, data) })
	ch.On(socket.EventDisconnect, func(data json.RawMessage) { c.onDisconnect(ch, data) })
	ch.Start()

	join := models.JoinRequest{UserID: c.viewerID, MatchID: c.matchID}
	if err := ch.Emit(ctx, socket.EventJoin, join); err != nil {
		c.notifier.Notify(utils.ErrorNotice("Could not join chat", err))
		c.Close()
		return err
	}
	return nil
}

// Reconnect replaces a dropped channel with a fresh one
func (c *ChatSession) Reconnect(ctx context.Context) error {
	log.Printf("🔄 Reconnecting chat %s", c.matchID)
	return c.Join(ctx)
}

// Close releases the channel. The message log is kept.
func (c *ChatSession) Close() error {
	c.mu.Lock()
	ch, cancel := c.channel, c.cancel
	c.channel = nil
	c.cancel = nil
	c.joined = false
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if ch == nil {
		return nil
	}
	return ch.Close()
}

// Send appends text to the log as "sending" and emits it. Blank text is
// ignored. It does not wait for the server echo.
func (c *ChatSession) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	c.mu.Lock()
	ch := c.channel
	if !c.joined || ch == nil {
		c.mu.Unlock()
		c.notifier.Notify(utils.ErrorNotice("You are not connected to this chat", ErrNotConnected))
		return ErrNotConnected
	}
	msg := models.ChatMessage{
		ID:         "temp-" + uuid.NewString(),
		MatchID:    c.matchID,
		SenderID:   c.viewerID,
		ReceiverID: c.peerID,
		Text:       text,
		CreatedAt:  c.now(),
		Status:     models.MessageStatusSending,
	}
	c.messages = append(c.messages, msg)
	c.mu.Unlock()

	wire := models.WireMessage{
		MatchID:    msg.MatchID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		Message:    msg.Text,
		CreatedAt:  msg.CreatedAt,
	}
	if err := ch.Emit(ctx, socket.EventSendMessage, wire); err != nil {
		c.mu.Lock()
		if i := c.indexLocked(msg.ID); i >= 0 {
			c.messages[i].Status = models.MessageStatusError
		}
		c.mu.Unlock()
		c.notifier.Notify(utils.ErrorNotice("Message not sent", err))
		return err
	}
	return nil
}

// Receive applies a server-pushed message. A known id is ignored; the
// oldest matching "sending" entry is replaced in place; anything else is
// appended.
func (c *ChatSession) Receive(w models.WireMessage) {
	if w.MatchID != "" && w.MatchID != c.matchID {
		log.Printf("⚠️ Dropping message for match %s in chat %s", w.MatchID, c.matchID)
		return
	}
	msg := w.ToChatMessage()

	c.mu.Lock()
	defer c.mu.Unlock()

	if msg.ID != "" && c.indexLocked(msg.ID) >= 0 {
		return
	}
	for i := range c.messages {
		m := c.messages[i]
		if m.Status == models.MessageStatusSending && m.SenderID == msg.SenderID && m.Text == msg.Text {
			c.messages[i] = msg
			return
		}
	}
	c.messages = append(c.messages, msg)
}

func (c *ChatSession) onJoined(ctx context.Context, ch Channel, data json.RawMessage) {
	var ack models.JoinAck
	if len(data) > 0 {
		if err := json.Unmarshal(data, &ack); err != nil {
			log.Printf("⚠️ Malformed join ack: %v", err)
		}
	}
	if ack.MatchID != "" && ack.MatchID != c.matchID {
		log.Printf("⚠️ Ignoring join ack for match %s", ack.MatchID)
		return
	}

	c.mu.Lock()
	if c.channel != ch {
		c.mu.Unlock()
		return
	}
	c.joined = true
	ready := c.ready
	c.mu.Unlock()
	log.Printf("✅ Joined chat %s", c.matchID)

	c.loadHistory(ctx, ch)
	select {
	case <-ready:
	default:
		close(ready)
	}
}

func (c *ChatSession) loadHistory(ctx context.Context, ch Channel) {
	history, err := c.history.GetChatHistory(ctx, c.matchID, c.viewerID)
	if err != nil {
		log.Printf("❌ Failed to load history for %s: %v", c.matchID, err)
		c.notifier.Notify(utils.ErrorNotice("Failed to load messages", err))
		return
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].CreatedAt.Before(history[j].CreatedAt)
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.channel != ch {
		return
	}
	// ids already confirmed in the log cannot be the echo of a pending entry
	claimed := make(map[string]bool)
	for _, m := range c.messages {
		if m.Status != models.MessageStatusSending && m.ID != "" {
			claimed[m.ID] = true
		}
	}

	merged := make([]models.ChatMessage, 0, len(history)+len(c.messages))
	merged = append(merged, history...)
	for _, m := range c.messages {
		if m.Status != models.MessageStatusSending {
			continue
		}
		if id, ok := confirmedBy(history, m, claimed); ok {
			claimed[id] = true
			continue
		}
		merged = append(merged, m)
	}
	c.messages = merged
}

// confirmedBy finds the first unclaimed history entry that is the server
// copy of the pending message m
func confirmedBy(history []models.ChatMessage, m models.ChatMessage, claimed map[string]bool) (string, bool) {
	for _, h := range history {
		if h.ID == "" || claimed[h.ID] {
			continue
		}
		if h.SenderID == m.SenderID && h.Text == m.Text {
			return h.ID, true
		}
	}
	return "", false
}

func (c *ChatSession) onReceive(ch Channel, data json.RawMessage) {
	if !c.current(ch) {
		return
	}
	var w models.WireMessage
	if err := json.Unmarshal(data, &w); err != nil {
		log.Printf("⚠️ Malformed message on %s: %v", c.matchID, err)
		return
	}
	log.Printf("📩 Message received in %s from %s", c.matchID, w.SenderID)
	c.Receive(w)
}

func (c *ChatSession) onChatError(ch Channel, data json.RawMessage) {
	if !c.current(ch) {
		return
	}
	var e models.ChatError
	json.Unmarshal(data, &e)
	if e.Message == "" {
		e.Message = "unknown error"
	}
	log.Printf("❌ Chat error on %s: %s", c.matchID, e.Message)

	c.mu.Lock()
	c.joined = false
	c.mu.Unlock()
	c.notifier.Notify(utils.InfoNotice("Chat error: " + e.Message))
}

func (c *ChatSession) onDisconnect(ch Channel, data json.RawMessage) {
	if !c.current(ch) {
		return
	}
	c.mu.Lock()
	c.joined = false
	c.mu.Unlock()
	c.notifier.Notify(utils.InfoNotice("Disconnected from chat"))
}

func (c *ChatSession) current(ch Channel) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel == ch
}

func (c *ChatSession) indexLocked(id string) int {
	for i := range c.messages {
		if c.messages[i].ID == id {
			return i
		}
	}
	return -1
}

// Ready is closed once the current join is acknowledged and its history
// request has finished
func (c *ChatSession) Ready() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ready
}

// Joined reports whether Send is currently possible
func (c *ChatSession) Joined() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.joined
}

// Messages returns a copy of the log
func (c *ChatSession) Messages() []models.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}
