// Package models defines the core domain models for the payment-splitter
// backend.
//
// # Models
//
//   - LedgerEvent: a raw event observed on the payment contract
//   - Notification: one entry in a user's reconciled notification log
//   - SplitPlan / Participant: an exact-sum split of a payment
//
// # Design Principles
//
//  1. **Content-derived identity**: notifications are identified by a key
//     computed from their meaningful fields, never by random IDs. The chain
//     subscription delivers events at least once; a redelivered event must
//     map to the same notification.
//  2. **Wei everywhere**: on-chain amounts are *big.Int wei in memory and
//     decimal strings on the wire. Floating point never touches money.
//  3. **Frontend compatibility**: Notification JSON field names match the
//     schema the dapp already stores client-side, so existing UI code can
//     render API payloads unchanged.
package models
