// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package treasury

import (
	"context"
	"fmt"
	"strconv"

	"github.com/blinklabs-io/votevault/auth"
	"github.com/blinklabs-io/votevault/database"
	"github.com/blinklabs-io/votevault/database/models"
	"github.com/blinklabs-io/votevault/database/types"
	"github.com/blinklabs-io/votevault/failure"
	"github.com/blinklabs-io/votevault/internal/checked"
	"github.com/blinklabs-io/votevault/keys"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Receipt describes a completed purchase
type Receipt struct {
	ID             uuid.UUID `json:"id"`
	Buyer          keys.Key  `json:"buyer"`
	Source         keys.Key  `json:"source"`
	Destination    keys.Key  `json:"destination"`
	CollateralPaid uint64    `json:"collateral_paid"`
	TokensReceived uint64    `json:"tokens_received"`
	Timestamp      int64     `json:"timestamp"`
}

// BuyTokens pays the configured price from the buyer's collateral account
// into the vault and credits the configured number of tokens to the buyer's
// token account. Either both transfers happen or neither does.
func (t *Treasury) BuyTokens(
	ctx context.Context,
	caller auth.Caller,
	source keys.Key,
	destination keys.Key,
) (ret *Receipt, err error) {
	ctx, done := t.ops.Start(
		ctx,
		"buy_tokens",
		caller,
		attribute.String("votevault.source", source.String()),
		attribute.String("votevault.destination", destination.String()),
	)
	defer func() { done(err) }()
	if err := auth.RequireVerified(caller); err != nil {
		return nil, err
	}
	buyer := caller.Key()
	txn := t.db.TransactionContext(ctx, true)
	err = txn.Do(func(txn *database.Txn) error {
		cfg, err := t.loadConfig(txn)
		if err != nil {
			return err
		}
		price := uint64(cfg.SolPrice)
		volume := uint64(cfg.TokensPerPurchase)
		// Destination checks
		dest, err := t.loadTokenAccount(destination, txn)
		if err != nil {
			return err
		}
		if dest.Owner != buyer {
			return failure.ErrInvalidTokenAccountOwner
		}
		if dest.Mint != cfg.TokenType {
			return failure.ErrTokenMintMismatch
		}
		mint, err := t.loadTreasuryMint(dest.Mint, txn)
		if err != nil {
			return err
		}
		// Collateral checks
		payer, err := t.loadCollateralAccount(source, txn)
		if err != nil {
			return err
		}
		if payer.Owner != buyer {
			return failure.New(
				failure.UnauthorizedAccess,
				"collateral source is not owned by the buyer",
			)
		}
		if uint64(payer.Lamports) < price {
			return failure.ErrInsufficientFunds
		}
		if err := t.payCollateral(payer, cfg.CollateralVault, price, txn); err != nil {
			return err
		}
		if t.beforeCredit != nil {
			if err := t.beforeCredit(); err != nil {
				return err
			}
		}
		if err := t.deliverTokens(cfg, mint, dest, volume, txn); err != nil {
			return err
		}
		ret = &Receipt{
			ID:             uuid.New(),
			Buyer:          buyer,
			Source:         source,
			Destination:    destination,
			CollateralPaid: price,
			TokensReceived: volume,
			Timestamp:      t.clock.Now().Unix(),
		}
		return t.journal(
			txn,
			"buy_tokens",
			caller,
			map[string]string{
				"receipt":     ret.ID.String(),
				"source":      source.String(),
				"destination": destination.String(),
				"collateral":  strconv.FormatUint(price, 10),
				"tokens":      strconv.FormatUint(volume, 10),
			},
		)
	})
	if err != nil {
		return nil, err
	}
	if t.metrics != nil {
		t.metrics.purchases.Inc()
		t.metrics.collateralReceived.Add(float64(ret.CollateralPaid))
		t.metrics.tokensDelivered.Add(float64(ret.TokensReceived))
	}
	t.logger.Info(
		"tokens purchased",
		"component", "treasury",
		"receipt", ret.ID.String(),
		"buyer", buyer.String(),
		"collateral", ret.CollateralPaid,
		"tokens", ret.TokensReceived,
	)
	t.publish(PurchaseEventType, PurchaseEvent{Receipt: *ret})
	return ret, nil
}

// payCollateral moves the price from the payer into the vault
func (t *Treasury) payCollateral(
	payer *models.CollateralAccount,
	vaultKey keys.Key,
	price uint64,
	txn *database.Txn,
) error {
	if payer.Key == vaultKey {
		// Paying the vault from itself leaves both balances unchanged
		return nil
	}
	vault, err := t.loadCollateralAccount(vaultKey, txn)
	if err != nil {
		return fmt.Errorf("load collateral vault: %w", err)
	}
	remaining, ok := checked.Sub(uint64(payer.Lamports), price)
	if !ok {
		return failure.ErrInsufficientFunds
	}
	vaultBalance, ok := checked.Add(uint64(vault.Lamports), price)
	if !ok {
		return failure.New(failure.InvalidAmount, "collateral vault overflow")
	}
	payer.Lamports = types.Uint64(remaining)
	vault.Lamports = types.Uint64(vaultBalance)
	if err := t.db.SetCollateralAccount(payer, txn); err != nil {
		return fmt.Errorf("debit collateral: %w", err)
	}
	if err := t.db.SetCollateralAccount(vault, txn); err != nil {
		return fmt.Errorf("credit collateral vault: %w", err)
	}
	return nil
}

// deliverTokens credits the purchased tokens, minting them or moving them
// from the supply source depending on the supply mode
func (t *Treasury) deliverTokens(
	cfg *models.TreasuryConfig,
	mint *models.Mint,
	dest *models.TokenAccount,
	volume uint64,
	txn *database.Txn,
) error {
	if SupplyMode(cfg.SupplyMode) == SupplyMint {
		return t.mintTo(mint, dest, volume, txn)
	}
	if cfg.SupplySource == nil {
		return fmt.Errorf("treasury in transfer mode has no supply source")
	}
	supply, err := t.loadTokenAccount(*cfg.SupplySource, txn)
	if err != nil {
		return fmt.Errorf("load supply source: %w", err)
	}
	if uint64(supply.Amount) < volume {
		return failure.New(
			failure.InsufficientFunds,
			"treasury supply is exhausted",
		)
	}
	if supply.Key == dest.Key {
		return nil
	}
	balance, ok := checked.Add(uint64(dest.Amount), volume)
	if !ok {
		return failure.New(failure.InvalidAmount, "token balance overflow")
	}
	supply.Amount = types.Uint64(uint64(supply.Amount) - volume)
	dest.Amount = types.Uint64(balance)
	if err := t.db.SetTokenAccount(supply, txn); err != nil {
		return fmt.Errorf("debit supply source: %w", err)
	}
	if err := t.db.SetTokenAccount(dest, txn); err != nil {
		return fmt.Errorf("credit token account: %w", err)
	}
	return nil
}
