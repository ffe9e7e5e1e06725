// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides ID generation and acting-user extraction.

User registration and token issuance are handled by an external gateway; this
service only reads the identity it forwards:

	userID, err := auth.UserID(r) // X-User-ID header

Random identifiers for polls come from GenerateID:

	pollID, err := auth.GenerateID(16)
*/
package auth
