// Package maintenance runs the gateway's background retention sweeps.
//
// Conversations are kept for 30 days from their first message and uploaded
// files for 7 days, by default. Each conversation deletion takes the same
// per-conversation lock chat turns use, so a sweep can never tear a
// transcript out from under an in-flight turn.
package maintenance
