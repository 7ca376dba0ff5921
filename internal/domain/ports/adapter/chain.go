package adapter

import (
	"context"
	"time"
)

// TxResult is the confirmed outcome of a chain submission.
type TxResult struct {
	TxHash      string
	BlockNumber uint64
	TokenID     *string // set by mint calls that surface the NFT token id
}

// MintRequest is the NFT-event payload for the primary mint-to-pool path.
type MintRequest struct {
	Recipient   string // contributor address embedded in the event record
	Subtype     uint8  // activity-type subtype (model.NFTSubtypeFor)
	Timestamp   time.Time
	Location    string
	Quantity    float64
	ActivityRef string
}

// ChainGateway is the opaque capability for submitting reward
// transactions and awaiting confirmation. Implementations own operator
// key signing and MUST serialize transactions per signer to avoid nonce
// collisions; that is the one place true concurrency control matters.
//
// Submission binds to ctx; receipt waiting must survive ctx
// cancellation (fire-and-check): an HTTP timeout never aborts an
// already-submitted transaction.
type ChainGateway interface {
	Name() string
	// MintToPool submits an NFT mint through the configured reward pool.
	MintToPool(ctx context.Context, req MintRequest) (*TxResult, error)
	// Transfer submits a plain reward-token transfer of amount (whole
	// tokens) to recipient.
	Transfer(ctx context.Context, recipient string, amount float64) (*TxResult, error)
}
