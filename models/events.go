// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// Event type constants for the websocket stream
const (
	EventPollCreated    = "poll-created"
	EventPollUpdated    = "poll-updated"
	EventPollDeleted    = "poll-deleted"
	EventVoteDelta      = "vote-delta"
	EventCommentCreated = "comment-created"
	EventCommentUpdated = "comment-updated"
	EventCommentDeleted = "comment-deleted"
)

// WsEvent is the tagged union pushed to every subscriber. Each variant carries
// only the identifying fields a client needs to patch local state; vote-delta
// in particular carries no running total, clients increment locally.
type WsEvent struct {
	Type        string   `json:"type"`
	PollID      string   `json:"pollId"`
	OptionOrder int      `json:"optionOrder,omitempty"`
	VoterUserID *string  `json:"voterUserId,omitempty"`
	Comment     *Comment `json:"comment,omitempty"`
	CommentID   string   `json:"commentId,omitempty"`
	ParentID    *string  `json:"parentId,omitempty"`
	Content     string   `json:"content,omitempty"`
	TS          int64    `json:"ts"`
}
