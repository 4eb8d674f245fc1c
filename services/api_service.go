package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"vibin_client/models"
	"vibin_client/routes"
)

// APIError is returned for any non-2xx response from the remote API
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Code: %d, Message: %s", e.Code, e.Message)
}

// APIService talks to the remote REST API
type APIService struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

// NewAPIService creates a client bounded by timeout
func NewAPIService(baseURL, token string, timeout time.Duration) *APIService {
	return &APIService{
		BaseURL: baseURL,
		Token:   token,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

// GetRecommendations fetches one page of the candidate feed
func (s *APIService) GetRecommendations(ctx context.Context, viewerID string, page, limit int) (*models.RecommendationsPage, error) {
	log.Printf("🔍 Fetching recommendations for %s (page %d, limit %d)", viewerID, page, limit)

	var out models.RecommendationsPage
	u := routes.Build(s.BaseURL, routes.Recommendations, routes.Paged(viewerID, page, limit))
	if err := s.do(ctx, http.MethodGet, u, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch recommendations: %w", err)
	}
	return &out, nil
}

// Like records a one-directional like from fromID to toID
func (s *APIService) Like(ctx context.Context, fromID, toID string) (*models.LikeResponse, error) {
	log.Printf("🔄 Processing like %s -> %s", fromID, toID)

	var out models.LikeResponse
	body := models.LikeRequest{FromID: fromID, ToID: toID}
	if err := s.do(ctx, http.MethodPost, routes.Build(s.BaseURL, routes.Like, nil), body, &out); err != nil {
		return nil, fmt.Errorf("failed to like user: %w", err)
	}
	return &out, nil
}

// Unlike removes a prior like
func (s *APIService) Unlike(ctx context.Context, fromID, toID string) (*models.MessageResponse, error) {
	log.Printf("🔄 Removing like %s -> %s", fromID, toID)

	var out models.MessageResponse
	q := url.Values{"fromId": {fromID}, "toId": {toID}}
	if err := s.do(ctx, http.MethodDelete, routes.Build(s.BaseURL, routes.Like, q), nil, &out); err != nil {
		return nil, fmt.Errorf("failed to unlike user: %w", err)
	}
	return &out, nil
}

// GetReceivedLikes fetches one page of users who liked userID
func (s *APIService) GetReceivedLikes(ctx context.Context, userID string, page, limit int) (*models.ReceivedLikesPage, error) {
	var out models.ReceivedLikesPage
	u := routes.Build(s.BaseURL, routes.ReceivedLikes, routes.Paged(userID, page, limit))
	if err := s.do(ctx, http.MethodGet, u, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch received likes: %w", err)
	}
	return &out, nil
}

// ApproveMatch approves a pending like from otherID
func (s *APIService) ApproveMatch(ctx context.Context, viewerID, otherID string) (*models.ApproveResponse, error) {
	log.Printf("🔄 Approving %s for %s", otherID, viewerID)

	var out models.ApproveResponse
	body := models.ApproveRequest{ViewerID: viewerID, OtherID: otherID}
	if err := s.do(ctx, http.MethodPost, routes.Build(s.BaseURL, routes.ApproveMatch, nil), body, &out); err != nil {
		return nil, fmt.Errorf("failed to approve match: %w", err)
	}
	return &out, nil
}

// GetUserMatches fetches the mutual matches of userID
func (s *APIService) GetUserMatches(ctx context.Context, userID string) ([]models.MatchedProfile, error) {
	var out []models.MatchedProfile
	u := routes.Build(s.BaseURL, routes.Connections, url.Values{"userId": {userID}})
	if err := s.do(ctx, http.MethodGet, u, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch matches: %w", err)
	}
	return out, nil
}

// GetChatHistory fetches the stored messages of a match
func (s *APIService) GetChatHistory(ctx context.Context, matchID, userID string) ([]models.ChatMessage, error) {
	log.Printf("🔍 Fetching chat history for matchId: %s", matchID)

	var out []models.ChatMessage
	u := routes.Build(s.BaseURL, routes.ChatHistory, url.Values{"matchId": {matchID}, "userId": {userID}})
	if err := s.do(ctx, http.MethodGet, u, nil, &out); err != nil {
		return nil, fmt.Errorf("failed to fetch chat history: %w", err)
	}
	for i := range out {
		if out[i].Status == "" {
			out[i].Status = models.MessageStatusSent
		}
	}
	return out, nil
}

func (s *APIService) do(ctx context.Context, method, u string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("❌ %s %s returned %d: %s", method, u, resp.StatusCode, string(data))
		return &APIError{Code: resp.StatusCode, Message: errorMessage(data, resp.Status)}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// errorMessage pulls {"error"} or {"message"} out of an error body
func errorMessage(data []byte, fallback string) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	return fallback
}
