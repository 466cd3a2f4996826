// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/cheggaaa/pb.v1"
	"gopkg.in/yaml.v3"

	"github.com/vechain/stakeledger/ledger"
	"github.com/vechain/stakeledger/lvldb"
	"github.com/vechain/stakeledger/staker"
	"github.com/vechain/stakeledger/staker/config"
	"github.com/vechain/stakeledger/staker/memhost"
	"github.com/vechain/stakeledger/staker/stakelimit"
)

// scenario is a scripted sequence of ledger operations. Actors are referred to
// by name and get deterministic keys.
type scenario struct {
	Start      uint64           `yaml:"start"`
	Pool       scenarioPool     `yaml:"pool"`
	Validators []scenarioActor  `yaml:"validators"`
	Stakers    []scenarioStaker `yaml:"stakers"`
	Steps      []scenarioStep   `yaml:"steps"`
}

type scenarioPool struct {
	Decimals                   uint8  `yaml:"decimals"`
	CooldownTimeSeconds        uint64 `yaml:"cooldown_time_seconds"`
	MaxDeactivationBasisPoints uint16 `yaml:"max_deactivation_basis_points"`
	SyncRewardsLamports        uint64 `yaml:"sync_rewards_lamports"`
}

type scenarioActor struct {
	Name  string `yaml:"name"`
	Floor uint64 `yaml:"floor"`
}

type scenarioStaker struct {
	Name       string `yaml:"name"`
	Validator  string `yaml:"validator"`
	Collateral uint64 `yaml:"collateral"`
}

type scenarioStep struct {
	Op      string `yaml:"op"`
	Actor   string `yaml:"actor"`
	Amount  uint64 `yaml:"amount"`
	Seconds uint64 `yaml:"seconds"`
	Expect  string `yaml:"expect_error"` // substring the step must fail with
}

func loadScenario(path string) (*scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read scenario")
	}
	return parseScenario(data)
}

func parseScenario(data []byte) (*scenario, error) {
	var sc scenario
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		return nil, errors.Wrap(err, "decode scenario")
	}
	if len(sc.Steps) == 0 {
		return nil, errors.New("scenario has no steps")
	}
	return &sc, nil
}

// nameKey derives the key of a named actor.
func nameKey(kind, name string) ledger.Pubkey {
	return ledger.Blake2b([]byte("scenario"), []byte(kind), []byte(name))
}

type actor struct {
	key       ledger.Pubkey // stake record
	authority ledger.Pubkey
	vote      ledger.Pubkey
	account   ledger.Pubkey // collateral account, zero for validators
}

type replayer struct {
	host   *memhost.Host
	st     *staker.Staker
	pool   ledger.Pubkey
	admin  ledger.Pubkey
	slash  ledger.Pubkey
	vault  ledger.Pubkey
	mint   ledger.Pubkey
	payer  ledger.Pubkey
	actors map[string]*actor
}

// replay runs sc against an in-memory ledger and returns one line per step. It
// stops at the first step whose outcome differs from the expectation.
func replay(sc *scenario, ratioBasisPoints uint64, progress bool) ([]string, error) {
	db, err := lvldb.NewMem()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	host := memhost.New()
	host.SetNow(sc.Start)
	st, err := staker.New(db, host.Host(), staker.Options{
		Policy: stakelimit.Policy{RatioBasisPoints: ratioBasisPoints},
	})
	if err != nil {
		return nil, err
	}

	r := &replayer{
		host:   host,
		st:     st,
		pool:   nameKey("pool", "pool"),
		admin:  nameKey("pool", "admin"),
		slash:  nameKey("pool", "slasher"),
		vault:  nameKey("pool", "vault"),
		mint:   nameKey("pool", "mint"),
		payer:  nameKey("pool", "payer"),
		actors: make(map[string]*actor),
	}
	if err := r.setup(sc); err != nil {
		return nil, errors.Wrap(err, "setup")
	}

	var bar *pb.ProgressBar
	if progress {
		bar = pb.New(len(sc.Steps)).SetMaxWidth(90).Start()
		defer func() { bar.NotPrint = true }()
	}

	results := make([]string, 0, len(sc.Steps))
	for i, step := range sc.Steps {
		out, err := r.run(step)
		line := fmt.Sprintf("#%-3d %-18s %-10s %v", i+1, step.Op, step.Actor, out)
		if err != nil {
			line = fmt.Sprintf("#%-3d %-18s %-10s error: %v", i+1, step.Op, step.Actor, err)
		}
		results = append(results, line)
		if bar != nil {
			bar.Increment()
		}

		switch {
		case step.Expect == "" && err != nil:
			return results, errors.Wrapf(err, "step %d (%v)", i+1, step.Op)
		case step.Expect != "" && err == nil:
			return results, errors.Errorf("step %d (%v): expected error %q", i+1, step.Op, step.Expect)
		case step.Expect != "" && !strings.Contains(err.Error(), step.Expect):
			return results, errors.Errorf("step %d (%v): expected error %q, got %v", i+1, step.Op, step.Expect, err)
		}
	}
	if bar != nil {
		bar.Finish()
	}
	return results, nil
}

func (r *replayer) setup(sc *scenario) error {
	err := r.st.InitializeConfig(r.pool, config.Params{
		Authority:                  &r.admin,
		SlashAuthority:             &r.slash,
		Vault:                      r.vault,
		Mint:                       r.mint,
		Decimals:                   sc.Pool.Decimals,
		CooldownTimeSeconds:        sc.Pool.CooldownTimeSeconds,
		MaxDeactivationBasisPoints: sc.Pool.MaxDeactivationBasisPoints,
		SyncRewardsLamports:        sc.Pool.SyncRewardsLamports,
	})
	if err != nil {
		return err
	}

	for _, v := range sc.Validators {
		if _, ok := r.actors[v.Name]; ok {
			return errors.Errorf("duplicate actor %q", v.Name)
		}
		a := &actor{vote: nameKey("vote", v.Name), authority: nameKey("authority", v.Name)}
		r.host.SetVoteAccount(a.vote, staker.VoteAccount{
			NodePubkey:           nameKey("node", v.Name),
			AuthorizedWithdrawer: a.authority,
		})
		if a.key, err = r.st.InitializeValidatorStake(r.pool, a.vote); err != nil {
			return errors.Wrapf(err, "validator %q", v.Name)
		}
		if v.Floor > 0 {
			if err := r.st.SetTotalStakedLamportsMin(a.key, r.admin, v.Floor); err != nil {
				return errors.Wrapf(err, "validator %q", v.Name)
			}
		}
		r.actors[v.Name] = a
	}

	for _, s := range sc.Stakers {
		if _, ok := r.actors[s.Name]; ok {
			return errors.Errorf("duplicate actor %q", s.Name)
		}
		validator, ok := r.actors[s.Validator]
		if !ok || !validator.account.IsZero() {
			return errors.Errorf("staker %q: unknown validator %q", s.Name, s.Validator)
		}
		a := &actor{
			vote:      validator.vote,
			authority: nameKey("authority", s.Name),
			account:   nameKey("account", s.Name),
		}
		r.setCollateral(a, s.Collateral)
		if a.key, err = r.st.InitializeSolStakerStake(r.pool, a.account); err != nil {
			return errors.Wrapf(err, "staker %q", s.Name)
		}
		r.actors[s.Name] = a
	}
	return nil
}

func (r *replayer) setCollateral(a *actor, amount uint64) {
	vote := a.vote
	r.host.SetStakeAccount(a.account, staker.CollateralAccount{
		Withdrawer: a.authority,
		Voter:      &vote,
		Effective:  amount,
	})
}

func (r *replayer) actor(name string) (*actor, error) {
	a, ok := r.actors[name]
	if !ok {
		return nil, errors.Errorf("unknown actor %q", name)
	}
	return a, nil
}

// run executes one step and returns a short description of its result.
func (r *replayer) run(step scenarioStep) (string, error) {
	switch step.Op {
	case "advance":
		r.host.Advance(step.Seconds)
		return fmt.Sprintf("now=%d", r.host.Now()), nil
	case "distribute":
		r.host.Fund(r.payer, step.Amount)
		return "ok", r.st.DistributeRewards(r.pool, r.payer, step.Amount)
	case "distribute_holder":
		r.host.Fund(r.payer, step.Amount)
		return "ok", r.st.DistributeHolderRewards(r.pool, r.payer, step.Amount)
	}

	a, err := r.actor(step.Actor)
	if err != nil {
		return "", err
	}
	switch step.Op {
	case "stake":
		r.host.Fund(a.authority, step.Amount)
		return "ok", r.st.StakeTokens(a.key, a.authority, a.authority, r.vault, r.mint, step.Amount)
	case "unstake":
		return "ok", r.st.Unstake(a.key, a.authority, a.authority, step.Amount)
	case "harvest":
		paid, err := r.st.HarvestRewards(a.key, a.authority, a.authority)
		return fmt.Sprintf("paid=%d", paid), err
	case "harvest_holder":
		paid, err := r.st.HarvestHolderRewards(a.key, a.authority, a.authority)
		return fmt.Sprintf("paid=%d", paid), err
	case "slash":
		slashed, err := r.st.Slash(a.key, r.slash, step.Amount)
		return fmt.Sprintf("slashed=%d", slashed), err
	case "collateral":
		if a.account.IsZero() {
			return "", errors.Errorf("%q has no collateral account", step.Actor)
		}
		r.setCollateral(a, step.Amount)
		return fmt.Sprintf("collateral=%d", step.Amount), nil
	case "sync":
		fee, err := r.st.SyncSolStake(a.key, r.payer)
		return fmt.Sprintf("fee=%d", fee), err
	case "floor":
		return "ok", r.st.SetTotalStakedLamportsMin(a.key, r.admin, step.Amount)
	case "deactivate":
		return "ok", r.st.Deactivate(a.key, a.authority, step.Amount)
	case "inactivate":
		moved, err := r.st.Inactivate(a.key)
		return fmt.Sprintf("moved=%d", moved), err
	case "withdraw":
		return "ok", r.st.Withdraw(a.key, a.authority, a.authority, step.Amount)
	case "check":
		return r.check(a, step.Amount)
	default:
		return "", errors.Errorf("unknown op %q", step.Op)
	}
}

// check asserts the active amount of an actor.
func (r *replayer) check(a *actor, active uint64) (string, error) {
	stake, err := r.st.Stake(a.key)
	if err != nil {
		return "", err
	}
	d := stake.Delegation
	out := fmt.Sprintf("active=%d effective=%d", d.ActiveAmount, d.EffectiveAmount)
	if d.ActiveAmount != active {
		return out, errors.Errorf("active amount %d, want %d", d.ActiveAmount, active)
	}
	return out, nil
}
