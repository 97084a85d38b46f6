// Package stashapi is the HTTP boundary of the prompt stash: the routes the
// editor calls to continue or clear paused nodes, a long-poll route an
// out-of-process executor pauses through, and a client for those and the
// list endpoints. Requests are plain JSON; there is no retry policy.
package stashapi
