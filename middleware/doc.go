// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and JSON helpers.

  - WithLogging: request logging with status and duration (httpsnoop)
  - CORS: cross-origin headers for the web frontend
  - JSONResponse / ErrorResponse / ReasonResponse: response writers
  - ParseJSONBody: request body decoding

ReasonResponse puts a machine-readable reason code (models.ReasonPollClosed,
models.ReasonVoteCapExceeded, ...) in the error field, which the client maps
to user-facing messages.
*/
package middleware
