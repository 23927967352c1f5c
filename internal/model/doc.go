// Package model defines the row types the collector persists.
//
// Conventions:
//   - Prices and rates: shopspring decimal, stored as PostgreSQL numeric
//   - Timestamps: int64 microseconds since Unix epoch (CapturedAt)
//   - FirstSeen: unix seconds, as reported by Steamlytics
//   - RunID: uuid.UUID shared by every row of one poll cycle
package model
