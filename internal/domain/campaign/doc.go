// Package campaign holds the patient-facing fundraising model: campaigns,
// the supporter leaves attached to them and the memberships that tie users
// to a campaign as supporter or patient.
//
// Aggregate counters on Campaign (leaf, supporter and monthly totals) are
// denormalized. Repositories update them with atomic increments rather than
// read-modify-write so concurrent writers cannot lose updates.
package campaign
