package models

import "time"

// ConnectionKind tags which remote collection produced a ConnectionRecord
type ConnectionKind string

// ConnectionRecord is the merged view of a pending like and a mutual match
// for one other user. A record with IsMutualMatch always carries a MatchID.
type ConnectionRecord struct {
	ID            string           `json:"id"`
	Kind          ConnectionKind   `json:"kind"`
	Profile       CandidateProfile `json:"profile"`
	IsLikedYou    bool             `json:"isLikedYou"`
	IsApproved    bool             `json:"isApproved"`
	IsMutualMatch bool             `json:"isMutualMatch"`
	MatchID       string           `json:"matchId,omitempty"`
	SortDate      time.Time        `json:"sortDate"`
}
