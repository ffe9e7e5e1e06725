package models

import "time"

// Poll visibility constants
const (
	VisibilityPublic  = "PUBLIC"
	VisibilityPrivate = "PRIVATE"
)

// Vote rejection reason codes, surfaced in error responses
const (
	ReasonPollClosed      = "PollClosed"
	ReasonUnknownOption   = "UnknownOption"
	ReasonVoteCapExceeded = "VoteCapExceeded"
	ReasonNotInvited      = "NotInvited"
	ReasonNotOwner        = "NotOwner"
	ReasonNotAuthorized   = "NotAuthorized"
)

// Request types

type CreatePollRequest struct {
	Question        string       `json:"question"`
	Visibility      string       `json:"visibility"`
	MaxVotesPerUser int          `json:"maxVotesPerUser"`
	ValidUntil      time.Time    `json:"validUntil"`
	DurationDays    int          `json:"durationDays"`
	InvitedUsers    []string     `json:"invitedUsers"`
	PollOptions     []VoteOption `json:"pollOptions"`
}

type UpdatePollRequest struct {
	ExtendDays   int      `json:"extendDays"`
	InvitedUsers []string `json:"invitedUsers"`
}

type AddOptionsRequest struct {
	PollOptions []VoteOption `json:"pollOptions"`
}

type CastVoteRequest struct {
	OptionOrder int `json:"optionOrder"`
}

type CreateCommentRequest struct {
	Content  string  `json:"content"`
	ParentID *string `json:"parentId,omitempty"`
}

type UpdateCommentRequest struct {
	Content string `json:"content"`
}

// Response types

type CastVoteResponse struct {
	Accepted bool `json:"accepted"`
}

// Domain types

type Poll struct {
	PollID          string       `json:"pollId"`
	Question        string       `json:"question"`
	CreatorID       string       `json:"creatorId"`
	Visibility      string       `json:"visibility"`
	MaxVotesPerUser int          `json:"maxVotesPerUser"`
	ValidUntil      time.Time    `json:"validUntil"`
	CreatedAt       time.Time    `json:"createdAt"`
	PollOptions     []VoteOption `json:"pollOptions"`
	InvitedUsers    []string     `json:"invitedUsers,omitempty"`
}

// VoteOption belongs to exactly one poll. PresentationOrder is the stable
// integer key used on the wire; captions may repeat or be edited.
type VoteOption struct {
	Caption           string `json:"caption"`
	PresentationOrder int    `json:"presentationOrder"`
}

type Comment struct {
	CommentID string    `json:"commentId"`
	PollID    string    `json:"pollId"`
	AuthorID  string    `json:"authorId"`
	ParentID  *string   `json:"parentId,omitempty"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CommentPage is the page shape shared by top-level and reply pagination.
type CommentPage struct {
	Items      []Comment `json:"items"`
	Total      int       `json:"total"`
	HasMore    bool      `json:"hasMore"`
	NextOffset int       `json:"nextOffset"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
