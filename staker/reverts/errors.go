// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

// account state
var (
	ErrUninitializedAccount = NewWithKind(KindAccountState, "account is not initialized")
	ErrAlreadyInitialized   = NewWithKind(KindAccountState, "account is already initialized")
	ErrInvalidSeeds         = NewWithKind(KindAccountState, "account does not match its derived address")
	ErrInvalidAccountData   = NewWithKind(KindAccountState, "account holds a record of another type")
	ErrStaleConfig          = NewWithKind(KindAccountState, "config was modified concurrently")
)

// authorization
var (
	ErrMissingRequiredSignature = NewWithKind(KindAuthorization, "missing required signature")
	ErrInvalidAuthority         = NewWithKind(KindAuthorization, "invalid authority")
	ErrAuthorityNotSet          = NewWithKind(KindAuthorization, "authority is not set")
)

// arithmetic
var (
	ErrArithmeticOverflow = NewWithKind(KindArithmetic, "arithmetic overflow")
)

// domain
var (
	ErrInvalidAmount                     = New("amount must be greater than zero")
	ErrInsufficientStakeAmount           = New("insufficient stake amount")
	ErrMaximumDeactivationAmountExceeded = New("amount exceeds maximum deactivation amount")
	ErrActiveUnstakeCooldown             = New("unstake cooldown is still active")
	ErrActiveDeactivationCooldown        = New("deactivation cooldown is still active")
	ErrNoDeactivatingAmount              = New("no amount is deactivating")
	ErrInsufficientInactiveAmount        = New("insufficient inactive amount")
	ErrIncorrectVault                    = New("incorrect vault account")
	ErrInvalidMint                       = New("invalid token mint")
	ErrInvalidBasisPoints                = New("basis points must not exceed 10000")
	ErrNoEffectiveStake                  = New("pool has no effective stake")
	ErrCollateralInSync                  = New("collateral is already in sync")
	ErrUnknownConfigField                = New("unknown config field")
)
