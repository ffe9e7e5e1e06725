// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models contains the request, response, domain and event types shared
across the Livepoll API server.

# Domain Types

  - Poll: question, ordered options, visibility, invite set, vote cap, deadline
  - VoteOption: caption plus the stable presentation order used on the wire
  - Comment: forest node keyed by id with an optional parentId back-reference
  - CommentPage: the {items, total, hasMore, nextOffset} pagination shape

# Events

WsEvent is the tagged union pushed over the websocket stream. The Type field
selects the variant (poll-created, poll-deleted, poll-updated, vote-delta,
comment-created, comment-updated, comment-deleted); unused fields are omitted
from the JSON encoding.
*/
package models
