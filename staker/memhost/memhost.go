// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package memhost is an in-memory host for the staker, used by tests and scenario replays.
package memhost

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/staker"
)

// ErrInsufficientFunds is returned when a transfer source cannot cover the amount.
var ErrInsufficientFunds = errors.New("insufficient funds")

// Host keeps vote accounts, collateral accounts and balances in maps. Token and
// lamport balances share one namespace keyed by account.
type Host struct {
	mu        sync.Mutex
	votes     map[ledger.Pubkey]*staker.VoteAccount
	accounts  map[ledger.Pubkey]*staker.CollateralAccount
	balances  map[ledger.Pubkey]uint64
	reserve   uint64
	now       uint64
	failing   map[staker.TransferKind]error
	transfers []staker.Transfer
}

func New() *Host {
	return &Host{
		votes:    make(map[ledger.Pubkey]*staker.VoteAccount),
		accounts: make(map[ledger.Pubkey]*staker.CollateralAccount),
		balances: make(map[ledger.Pubkey]uint64),
		failing:  make(map[staker.TransferKind]error),
	}
}

// Host returns the collaborators to pass to staker.New.
func (h *Host) Host() staker.Host {
	return staker.Host{
		Oracle:   h,
		Executor: h,
		Rewards:  h,
		Clock:    h,
	}
}

// SetVoteAccount registers a validator vote account.
func (h *Host) SetVoteAccount(vote ledger.Pubkey, account staker.VoteAccount) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.votes[vote] = &account
}

// SetStakeAccount registers or replaces a collateral account.
func (h *Host) SetStakeAccount(key ledger.Pubkey, account staker.CollateralAccount) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if account.Voter != nil {
		voter := *account.Voter
		account.Voter = &voter
	}
	h.accounts[key] = &account
}

// Fund credits amount to account.
func (h *Host) Fund(account ledger.Pubkey, amount uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.balances[account] += amount
}

// Balance returns the balance of account.
func (h *Host) Balance(account ledger.Pubkey) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.balances[account]
}

// SetReserve sets the balance every rewards holder must keep.
func (h *Host) SetReserve(reserve uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reserve = reserve
}

// SetNow sets the clock.
func (h *Host) SetNow(now uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now = now
}

// Advance moves the clock forward.
func (h *Host) Advance(seconds uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.now += seconds
}

// FailOn makes every transfer of kind fail with err. A nil err clears it.
func (h *Host) FailOn(kind staker.TransferKind, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err == nil {
		delete(h.failing, kind)
		return
	}
	h.failing[kind] = err
}

// Transfers returns the executed transfers in order.
func (h *Host) Transfers() []staker.Transfer {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]staker.Transfer(nil), h.transfers...)
}

func (h *Host) VoteAccount(vote ledger.Pubkey) (*staker.VoteAccount, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	account, ok := h.votes[vote]
	if !ok {
		return nil, errors.Errorf("vote account %v not found", vote)
	}
	cpy := *account
	return &cpy, nil
}

func (h *Host) StakeAccount(key ledger.Pubkey) (*staker.CollateralAccount, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	account, ok := h.accounts[key]
	if !ok {
		return nil, errors.Errorf("stake account %v not found", key)
	}
	cpy := *account
	if account.Voter != nil {
		voter := *account.Voter
		cpy.Voter = &voter
	}
	return &cpy, nil
}

// Execute moves the amount from source to destination. Burns have a zero destination.
func (h *Host) Execute(t *staker.Transfer) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.failing[t.Kind]; err != nil {
		return err
	}
	if h.balances[t.Source] < t.Amount {
		return errors.Wrapf(ErrInsufficientFunds, "%v has %d, needs %d", t.Source, h.balances[t.Source], t.Amount)
	}
	h.balances[t.Source] -= t.Amount
	if !t.Destination.IsZero() {
		h.balances[t.Destination] += t.Amount
	}
	h.transfers = append(h.transfers, *t)
	return nil
}

func (h *Host) Lamports(holder ledger.Pubkey) (uint64, uint64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.balances[holder], h.reserve, nil
}

func (h *Host) Now() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.now
}
