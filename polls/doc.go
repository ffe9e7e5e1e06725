// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package polls owns poll, option and invite rows.

# Operations

	store := polls.NewStore(db, bus)

	poll, err := store.Create(ctx, polls.CreatePoll{...}) // publishes poll-created
	poll, err := store.Get(ctx, pollID, userID)           // visibility-checked
	list, err := store.List(ctx, userID)
	poll, err := store.Extend(ctx, pollID, userID, d, invites) // creator only
	poll, err := store.AddOptions(ctx, pollID, userID, opts)   // creator only
	err := store.Delete(ctx, pollID, userID)                   // creator only

# Visibility

PUBLIC polls are visible to everyone. PRIVATE polls are visible only to their
invite set, which always includes the creator.

# Errors

ErrInvalid wraps validation failures; ErrNotFound, ErrNotInvited and
ErrNotOwner are returned unwrapped for errors.Is checks in handlers.
*/
package polls
