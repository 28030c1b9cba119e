// Copyright (c) 2026 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/meridian-pool/meridian/balance"
	"github.com/meridian-pool/meridian/meridian"
	"github.com/meridian-pool/meridian/metrics"
	"github.com/meridian-pool/meridian/program"
	"github.com/meridian-pool/meridian/reverts"
	"github.com/meridian-pool/meridian/runtime"
	"github.com/meridian-pool/meridian/state"
	"github.com/meridian-pool/meridian/token"
)

var metricSuggestionCount = metrics.LazyLoadCounterVec("maintenance_suggestion_count", []string{"instruction"})

// suggestion is one maintenance instruction the operator should submit. The
// voter identifies which validator's derived accounts go into the account
// list; zero for instance-wide instructions.
type suggestion struct {
	instruction program.Instruction
	voter       meridian.Address
}

// maintenanceLoop periodically inspects the instance in the local store and
// appends suggested instructions to the queue file. The store is a synced
// snapshot, so every suggestion may lose the race against other maintainers;
// the program rejects stale ones instead of misapplying them.
type maintenanceLoop struct {
	store     runtime.Store
	processor *program.Processor
	queuePath string
	rent      uint64
	interval  time.Duration
}

func (l *maintenanceLoop) run(ctx context.Context) error {
	logger.Info("maintenance loop started", "interval", l.interval, "queue", l.queuePath)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			suggestions, err := l.suggest()
			if err != nil {
				logger.Warn("maintenance pass failed", "err", err)
				continue
			}
			if err := l.appendQueue(suggestions); err != nil {
				return err
			}
		}
	}
}

// suggest computes the maintenance instructions the instance wants right now.
// UpdateExchangeRate always leads: it is permissionless and the program
// rejects it when the epoch already has a rate, so suggesting it costs only a
// failed transaction.
func (l *maintenanceLoop) suggest() ([]suggestion, error) {
	account, err := l.store.Get(l.processor.Instance())
	if err != nil {
		return nil, errors.WithMessage(err, "load instance")
	}
	pool, err := state.Deserialize(account.Data)
	if err != nil {
		return nil, err
	}

	suggestions := []suggestion{{instruction: &program.UpdateExchangeRate{}}}

	available, err := l.reserveAvailable()
	if err != nil {
		return nil, err
	}
	targets, err := balance.Targets(available, &pool.Validators)
	if errors.Is(err, reverts.ErrNoActiveValidators) {
		return suggestions, nil
	} else if err != nil {
		return nil, err
	}

	if index, shortfall := balance.FurthestBelowTarget(&pool.Validators, targets); shortfall > 0 {
		amount := min(shortfall, available)
		if amount >= token.Native(meridian.MinimumStakeAccountBalance) {
			suggestions = append(suggestions, suggestion{
				instruction: &program.StakeDeposit{Amount: amount},
				voter:       pool.Validators.Entries[index].Address,
			})
		}
	}

	index, excess, err := balance.MostAboveTarget(&pool.Validators, targets)
	if err != nil {
		return nil, err
	}
	if excess > token.Native(l.rent) &&
		pool.Validators.Entries[index].Entry.UnstakeSeeds.Count() < meridian.MaxUnstakeAccounts {
		suggestions = append(suggestions, suggestion{
			instruction: &program.Unstake{Amount: excess},
			voter:       pool.Validators.Entries[index].Address,
		})
	}

	// fold fragmented stake accounts back into one
	for i := range pool.Validators.Entries {
		if pool.Validators.Entries[i].Entry.StakeSeeds.Count() >= 2 {
			suggestions = append(suggestions, suggestion{
				instruction: &program.MergeStake{},
				voter:       pool.Validators.Entries[i].Address,
			})
		}
	}
	return suggestions, nil
}

func (l *maintenanceLoop) reserveAvailable() (token.Native, error) {
	account, err := l.store.Get(l.processor.ReserveAddress())
	if errors.Is(err, runtime.ErrNotFound) {
		return 0, nil
	} else if err != nil {
		return 0, errors.WithMessage(err, "load reserve")
	}
	if account.Balance <= token.Native(l.rent) {
		return 0, nil
	}
	return account.Balance - token.Native(l.rent), nil
}

// appendQueue writes the suggestions to the queue file, one per line:
// instruction name, voter and hex payload.
func (l *maintenanceLoop) appendQueue(suggestions []suggestion) error {
	file, err := os.OpenFile(l.queuePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, s := range suggestions {
		data := program.EncodeInstruction(s.instruction)
		name := s.instruction.Name()
		if _, err := fmt.Fprintf(file, "%s %v %s\n", name, s.voter, hex.EncodeToString(data)); err != nil {
			return err
		}
		metricSuggestionCount().AddWithLabel(1, map[string]string{"instruction": name})
		logger.Debug("suggested", "instruction", name, "voter", s.voter)
	}
	return nil
}
