// Package elapsed turns a relationship start instant into what the counter
// shows: a calendar-aware breakdown of the time since start, the flower's
// growth stage, and the anniversary ("bodas") label.
//
// Decompose, Classify and NameFor are pure. Every and Watch recompute them on
// a fixed period against an injected clock.Clock and publish to a callback
// until the returned Subscription is cancelled.
package elapsed
