// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package comments owns the threaded comment forest for each poll.

# Shape

Comments nest to unbounded depth via an optional parentId back-reference.
Retrieval is lazy: ListTopLevel pages the roots newest-first, ListReplies
pages one comment's direct children oldest-first, and deeper levels are
fetched by calling ListReplies again on each child. Both return the shared
page shape:

	{items, total, hasMore, nextOffset}

with nextOffset = offset + len(items) and hasMore = nextOffset < total.

# Ownership Rules

Edit is restricted to the author. Delete is allowed for the author or the
poll's owner. Deleting a comment does not cascade: its replies survive as
orphans and remain paginable by parentId.

# Events

Every successful mutation publishes comment-created / comment-updated /
comment-deleted with enough identifying data for subscribers to patch local
state without a refetch.
*/
package comments
