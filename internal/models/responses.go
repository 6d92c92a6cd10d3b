package models

// PlainSuccess is the body for mutations with nothing else to say.
type PlainSuccess struct{}

// ContentIDResponse returns the id of freshly created content.
type ContentIDResponse struct {
	ContentID uint `json:"contentid"`
}

// ContentListResponse wraps a listing result.
type ContentListResponse struct {
	Contents []ContentSummary `json:"contents"`
}

// ContentResponse wraps a single full content item.
type ContentResponse struct {
	Content ContentDetail `json:"content"`
}

// TagListResponse lists the tags of a content item.
type TagListResponse struct {
	Tags []string `json:"tags"`
}

// TagCountsResponse lists a project's tags with usage counts.
type TagCountsResponse struct {
	Tags map[string]int `json:"tags"`
}

// LiteUser is the per-project user projection with precomputed counters.
type LiteUser struct {
	UserID          uint   `json:"userid"`
	Username        string `json:"username"`
	SubmissionCount int    `json:"submission_count"`
	LikesGiven      int    `json:"likes_given"`
	LikesReceived   int    `json:"likes_received"`
	Moderator       bool   `json:"moderator"`
}

// UserResponse wraps a single user.
type UserResponse struct {
	User LiteUser `json:"user"`
}

// UserListResponse wraps a user listing.
type UserListResponse struct {
	Users []LiteUser `json:"users"`
}

// BanEntry identifies a banned user.
type BanEntry struct {
	UserID   uint   `json:"userid"`
	Username string `json:"username"`
}

// IsAuthResponse reports whether a token resolved to a user.
type IsAuthResponse struct {
	Authenticated bool `json:"authenticated"`
}
