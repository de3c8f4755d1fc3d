// Package ratelimit caps per-client API request volume.
//
// The limiter uses fixed windows: each key (normally the client address)
// gets a fresh allowance when its window starts and is rejected once the
// allowance is spent, until the window ages out. Windows are tracked in
// memory and cleaned up in the background.
package ratelimit
