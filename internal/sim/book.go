package sim

import (
	"sync"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
)

// Book simulates the external auction framework's bookkeeping for the base
// token's auction: the kick timestamp and the amount reserved for takers.
type Book struct {
	mu        sync.Mutex
	clock     *Clock
	kicked    time.Time
	available sdkmath.Int
}

// NewBook creates a book with no auction kicked yet.
func NewBook(clock *Clock) *Book {
	return &Book{clock: clock, available: sdkmath.ZeroInt()}
}

// Kicked implements auction.Book.
func (b *Book) Kicked() (time.Time, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.kicked, nil
}

// AmountAvailable implements auction.Book.
func (b *Book) AmountAvailable() (sdkmath.Int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.available, nil
}

// Kick opens an auction for the given amount at the clock's current instant.
func (b *Book) Kick(amount sdkmath.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.kicked = b.clock.Now()
	b.available = amount
}

// Take reduces the reserved amount as a fill settles, clamped at zero.
func (b *Book) Take(amount sdkmath.Int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.available = b.available.Sub(amount)
	if b.available.IsNegative() {
		b.available = sdkmath.ZeroInt()
	}
}

// Accounting simulates the vault/share-accounting collaborator.
type Accounting struct {
	mu          sync.Mutex
	management  common.Address
	shutdown    bool
	totalAssets sdkmath.Int
}

// NewAccounting creates an accounting view with the given management role.
func NewAccounting(management common.Address) *Accounting {
	return &Accounting{management: management, totalAssets: sdkmath.ZeroInt()}
}

// TotalAssets implements vaultacct.Accounting.
func (a *Accounting) TotalAssets() (sdkmath.Int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.totalAssets, nil
}

// Management implements vaultacct.Accounting.
func (a *Accounting) Management() (common.Address, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.management, nil
}

// IsShutdown implements vaultacct.Accounting.
func (a *Accounting) IsShutdown() (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.shutdown, nil
}

// SetShutdown flips the vault's shutdown flag.
func (a *Accounting) SetShutdown(v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.shutdown = v
}

// SetTotalAssets overrides the upstream total-assets figure.
func (a *Accounting) SetTotalAssets(v sdkmath.Int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.totalAssets = v
}
