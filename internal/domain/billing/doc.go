// Package billing models recurring commitments from supporters to campaigns.
//
// A Commitment is created when a checkout completes and afterwards follows the
// payment provider's subscription lifecycle:
//
//	active -> past_due | cancelled | paused
//	past_due -> active | cancelled | paused
//	paused -> active | cancelled
//
// Provider-driven updates are applied as reported. Supporters can only pause
// and resume their own commitments.
package billing
