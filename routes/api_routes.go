package routes

import (
	"net/url"
	"strconv"
	"strings"
)

// Remote REST routes, grouped by the server's subrouter prefixes
const (
	MatchPrefix       = "/api/match"
	InteractionPrefix = "/api/interactions"
	ChatPrefix        = "/api/chat"

	Recommendations = MatchPrefix + "/recommendations"
	ApproveMatch    = MatchPrefix + "/approve"
	Connections     = MatchPrefix + "/connections"
	Like            = InteractionPrefix + "/like"
	ReceivedLikes   = InteractionPrefix + "/received"
	ChatHistory     = ChatPrefix + "/messages"
)

// Build joins base and path and appends the query parameters
func Build(base, path string, query url.Values) string {
	u := strings.TrimRight(base, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// Paged returns the query for a paginated per-user listing
func Paged(userID string, page, limit int) url.Values {
	return url.Values{
		"userId": {userID},
		"page":   {strconv.Itoa(page)},
		"limit":  {strconv.Itoa(limit)},
	}
}
