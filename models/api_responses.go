package models

import "time"

// RecommendationsPage is returned by GET recommendations
type RecommendationsPage struct {
	Users      []CandidateProfile `json:"users"`
	Page       int                `json:"page"`
	TotalPages int                `json:"totalPages"`
}

// LikeRequest is the body of POST/DELETE like
type LikeRequest struct {
	FromID string `json:"fromId"`
	ToID   string `json:"toId"`
}

// LikeResponse is returned by POST like. Matched signals an immediate mutual match.
type LikeResponse struct {
	Message string `json:"message"`
	Liked   bool   `json:"liked"`
	Matched bool   `json:"matched"`
}

// MessageResponse is the generic {"message": ...} reply
type MessageResponse struct {
	Message string `json:"message"`
}

// Liker is a profile that liked the viewer
type Liker struct {
	CandidateProfile
	LikedAt time.Time `json:"likedAt"`
}

// ReceivedLikesPage is returned by GET receivedLikes
type ReceivedLikesPage struct {
	Likers     []Liker `json:"likers"`
	Page       int     `json:"page"`
	Limit      int     `json:"limit"`
	Total      int     `json:"total"`
	TotalPages int     `json:"totalPages"`
}

// ApproveRequest is the body of POST approveMatch
type ApproveRequest struct {
	ViewerID string `json:"viewerId"`
	OtherID  string `json:"otherId"`
}

// MatchedProfile is a mutual match with the other user's profile
type MatchedProfile struct {
	CandidateProfile
	MatchID   string    `json:"matchId"`
	MatchedAt time.Time `json:"matchedAt"`
}

// ApprovedMatch is the match created by an approval. ID is the match id.
type ApprovedMatch struct {
	ID        string    `json:"id"`
	MatchedAt time.Time `json:"matchedAt"`
	Name      string    `json:"name,omitempty"`
	Images    []string  `json:"images,omitempty"`
}

// ApproveResponse is returned by POST approveMatch
type ApproveResponse struct {
	Message string         `json:"message"`
	Matched bool           `json:"matched"`
	Match   *ApprovedMatch `json:"match,omitempty"`
}
