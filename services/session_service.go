package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"vibin_client/utils"
)

// ErrNoSession is returned when no viewer identity can be resolved
var ErrNoSession = errors.New("no viewer session")

const (
	viewerIDKey    = "viewerId"
	accessTokenKey = "accessToken"
)

// KVStore is the thin key-value persistence used for session state
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Session is the signed-in viewer
type Session struct {
	ViewerID    string
	AccessToken string
}

// SessionService persists the viewer session and resolves the viewer id
type SessionService struct {
	Store     KVStore
	DeviceKey string
}

func (s *SessionService) key(name string) string {
	return s.DeviceKey + "#" + name
}

// Save stores both session fields
func (s *SessionService) Save(ctx context.Context, session Session) error {
	if err := s.Store.Put(ctx, s.key(viewerIDKey), session.ViewerID); err != nil {
		return fmt.Errorf("failed to save viewer id: %w", err)
	}
	if err := s.Store.Put(ctx, s.key(accessTokenKey), session.AccessToken); err != nil {
		return fmt.Errorf("failed to save access token: %w", err)
	}
	log.Printf("✅ Session saved for viewer %s", session.ViewerID)
	return nil
}

// Load returns the stored session. Missing fields are left empty.
func (s *SessionService) Load(ctx context.Context) (Session, error) {
	var session Session
	viewerID, _, err := s.Store.Get(ctx, s.key(viewerIDKey))
	if err != nil {
		return session, fmt.Errorf("failed to load viewer id: %w", err)
	}
	token, _, err := s.Store.Get(ctx, s.key(accessTokenKey))
	if err != nil {
		return session, fmt.Errorf("failed to load access token: %w", err)
	}
	session.ViewerID = viewerID
	session.AccessToken = token
	return session, nil
}

// Clear removes the stored session
func (s *SessionService) Clear(ctx context.Context) error {
	if err := s.Store.Delete(ctx, s.key(viewerIDKey)); err != nil {
		return fmt.Errorf("failed to clear viewer id: %w", err)
	}
	if err := s.Store.Delete(ctx, s.key(accessTokenKey)); err != nil {
		return fmt.Errorf("failed to clear access token: %w", err)
	}
	return nil
}

// ViewerID resolves the viewer from the stored id, falling back to the
// subject claim of the stored access token.
func (s *SessionService) ViewerID(ctx context.Context) (string, error) {
	session, err := s.Load(ctx)
	if err != nil {
		return "", err
	}
	if session.ViewerID != "" {
		return session.ViewerID, nil
	}
	if session.AccessToken == "" {
		return "", ErrNoSession
	}
	sub, err := SubjectFromToken(session.AccessToken)
	if err != nil {
		return "", err
	}
	return sub, nil
}

// SubjectFromToken reads the sub claim without verifying the signature.
// The backend verifies the token on every request.
func SubjectFromToken(token string) (string, error) {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return "", fmt.Errorf("failed to parse access token: %w", err)
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil {
		return "", fmt.Errorf("failed to read token subject: %w", err)
	}
	if sub == "" {
		return "", ErrNoSession
	}
	return sub, nil
}

// DynamoKVStore keeps key-value pairs in a DynamoDB table keyed by sessionKey
type DynamoKVStore struct {
	Dynamo *DynamoService
	Table  string
}

type kvItem struct {
	Key   string `dynamodbav:"sessionKey"`
	Value string `dynamodbav:"value"`
}

func (s *DynamoKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	item, err := s.Dynamo.GetItem(ctx, s.Table, utils.StringKey("sessionKey", key))
	if errors.Is(err, ErrItemNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return utils.ExtractString(item, "value"), true, nil
}

func (s *DynamoKVStore) Put(ctx context.Context, key, value string) error {
	return s.Dynamo.PutItem(ctx, s.Table, kvItem{Key: key, Value: value})
}

func (s *DynamoKVStore) Delete(ctx context.Context, key string) error {
	return s.Dynamo.DeleteItem(ctx, s.Table, utils.StringKey("sessionKey", key))
}

// MemoryKVStore is an in-process KVStore
type MemoryKVStore struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewMemoryKVStore() *MemoryKVStore {
	return &MemoryKVStore{items: map[string]string{}}
}

func (s *MemoryKVStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok, nil
}

func (s *MemoryKVStore) Put(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return nil
}

func (s *MemoryKVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}
