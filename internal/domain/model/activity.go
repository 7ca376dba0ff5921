package model

import "time"

// Activity is one participation record per (user, event), written only
// by the verification pipeline. NFTID/TxHash stay nil until reward
// dispatch completes; a failed dispatch never rolls the record back.
type Activity struct {
	ID           string    `json:"id"`
	EventID      string    `json:"eventId"`
	QRCodeID     string    `json:"qrCodeId"`
	UserID       string    `json:"userId"`
	Quantity     float64   `json:"quantity"`
	RewardAmount float64   `json:"rewardAmount"`
	Notes        string    `json:"notes,omitempty"`
	NFTID        *string   `json:"nftId"`
	TxHash       *string   `json:"txHash"`
	CreatedAt    time.Time `json:"timestamp"`
}

// Geolocation is a caller-supplied GPS fix captured with a scan.
type Geolocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy,omitempty"`
}

// ChainProof records the on-chain outcome attached to a pseudonymous
// activity after dispatch resolves (best-effort).
type ChainProof struct {
	TxHash      string `json:"txHash"`
	BlockNumber uint64 `json:"blockNumber"`
	Status      string `json:"status"`
}

// PseudonymousActivity is the anonymous-path twin of Activity, keyed by
// a client-generated UUIDv4 instead of a persisted user id. The request
// metadata (IP, user agent, fingerprint) is kept for later abuse
// investigation and never gates the verification decision.
type PseudonymousActivity struct {
	ID                 string       `json:"id"`
	PseudonymousID     string       `json:"pseudonymousId"`
	EventID            string       `json:"eventId"`
	QRCodeID           string       `json:"qrCodeId"`
	ActivityType       QRType       `json:"activityType"` // role type scanned
	Quantity           float64      `json:"quantity"`
	RewardAmount       float64      `json:"rewardAmount"`
	Timestamp          time.Time    `json:"timestamp"`
	Geolocation        *Geolocation `json:"geolocation,omitempty"`
	SessionFingerprint string       `json:"sessionFingerprint,omitempty"`
	IPAddress          string       `json:"-"`
	UserAgent          string       `json:"-"`
	Proof              *ChainProof  `json:"blockchainProof,omitempty"`
	RewardsDistributed bool         `json:"rewardsDistributed"`
	CreatedAt          time.Time    `json:"createdAt"`
}

// AnonymousStats aggregates the pseudonymous ledger for the public
// stats endpoint.
type AnonymousStats struct {
	TotalActivities         int64   `json:"totalActivities"`
	TotalRewardsDistributed float64 `json:"totalRewardsDistributed"`
	UniqueParticipants      int64   `json:"uniqueParticipants"`
}
