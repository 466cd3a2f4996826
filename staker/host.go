// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"github.com/vechain/stakeledger/ledger"
)

// VoteAccount is a validator identity as reported by the collateral oracle.
type VoteAccount struct {
	NodePubkey           ledger.Pubkey
	AuthorizedWithdrawer ledger.Pubkey // seeds the authority of the validator stake
}

// CollateralAccount is an external collateral account as reported by the collateral oracle.
type CollateralAccount struct {
	Withdrawer   ledger.Pubkey  // seeds the authority of the staker stake
	Voter        *ledger.Pubkey // delegated vote account, nil when undelegated
	Effective    uint64
	Activating   uint64
	Deactivating uint64
}

// CollateralFor returns the collateral the account contributes to a validator.
// Only effective collateral delegated to that validator counts.
func (a *CollateralAccount) CollateralFor(vote ledger.Pubkey) uint64 {
	if a.Voter == nil || *a.Voter != vote {
		return 0
	}
	return a.Effective
}

// CollateralOracle reads external collateral state.
type CollateralOracle interface {
	VoteAccount(vote ledger.Pubkey) (*VoteAccount, error)
	StakeAccount(account ledger.Pubkey) (*CollateralAccount, error)
}

type TransferKind uint8

const (
	TransferStakeIn TransferKind = iota + 1
	TransferUnstakeOut
	TransferSlashBurn
	TransferRewardPayout
	TransferRewardDeposit
)

func (k TransferKind) String() string {
	switch k {
	case TransferStakeIn:
		return "stake-in"
	case TransferUnstakeOut:
		return "unstake-out"
	case TransferSlashBurn:
		return "slash-burn"
	case TransferRewardPayout:
		return "reward-payout"
	case TransferRewardDeposit:
		return "reward-deposit"
	default:
		return "unknown"
	}
}

// Transfer is a movement of tokens or native lamports computed by the ledger.
// Mint is zero for native lamports.
type Transfer struct {
	Kind        TransferKind
	Source      ledger.Pubkey
	Destination ledger.Pubkey // zero for burns
	Authority   ledger.Pubkey // signer the movement is authorized by
	Mint        ledger.Pubkey
	Amount      uint64
	Decimals    uint8
}

// TransferExecutor performs checked transfers. A failed transfer fails the operation.
type TransferExecutor interface {
	Execute(t *Transfer) error
}

// RewardPool reports the native balance of a rewards holder and the reserve it must keep.
type RewardPool interface {
	Lamports(holder ledger.Pubkey) (balance, reserve uint64, err error)
}

// Clock returns the current unix time in seconds.
type Clock interface {
	Now() uint64
}

// Host bundles the external collaborators of the ledger.
type Host struct {
	Oracle   CollateralOracle
	Executor TransferExecutor
	Rewards  RewardPool
	Clock    Clock
}
