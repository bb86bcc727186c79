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
	"errors"
	"fmt"
	"strconv"

	"github.com/blinklabs-io/votevault/auth"
	"github.com/blinklabs-io/votevault/database"
	"github.com/blinklabs-io/votevault/database/models"
	"github.com/blinklabs-io/votevault/database/types"
	"github.com/blinklabs-io/votevault/failure"
	"github.com/blinklabs-io/votevault/internal/checked"
	"github.com/blinklabs-io/votevault/keys"
	"go.opentelemetry.io/otel/attribute"
)

// DefaultDecimals is used for the mint created at initialization
const DefaultDecimals = 9

// InitParams are the treasury settings. Zero keys select the derived vault,
// the derived mint and, in transfer mode, the authority's associated token
// account as supply source.
type InitParams struct {
	CollateralVault   keys.Key
	TokenType         keys.Key
	SolPrice          uint64
	TokensPerPurchase uint64
	SupplyMode        SupplyMode
	SupplySource      keys.Key
	// InitialSupply is minted into the supply source in transfer mode
	InitialSupply uint64
	// Decimals applies to a mint created at initialization
	Decimals *uint8
}

// InitializeTreasury creates the treasury configuration with the caller as
// its authority. It fails with AlreadyInitialized if the treasury exists.
func (t *Treasury) InitializeTreasury(
	ctx context.Context,
	caller auth.Caller,
	params InitParams,
) (ret *TreasuryConfig, err error) {
	ctx, done := t.ops.Start(ctx, "initialize_treasury", caller)
	defer func() { done(err) }()
	if err := auth.RequireVerified(caller); err != nil {
		return nil, err
	}
	if params.SupplyMode != SupplyMint && params.SupplyMode != SupplyTransfer {
		return nil, fmt.Errorf("unknown supply mode: %s", params.SupplyMode)
	}
	txn := t.db.TransactionContext(ctx, true)
	err = txn.Do(func(txn *database.Txn) error {
		if _, err := t.db.GetTreasuryConfig(txn); err == nil {
			return failure.ErrAlreadyInitialized
		} else if !errors.Is(err, models.ErrTreasuryConfigNotFound) {
			return err
		}
		now := t.clock.Now().Unix()
		vault, err := t.prepareVault(params.CollateralVault, txn)
		if err != nil {
			return err
		}
		mint, err := t.prepareMint(params.TokenType, params.Decimals, txn)
		if err != nil {
			return err
		}
		cfg := &models.TreasuryConfig{
			Authority:         caller.Key(),
			CollateralVault:   vault,
			TokenType:         mint.Key,
			MintAuthority:     t.MintAuthority(),
			SolPrice:          types.Uint64(params.SolPrice),
			TokensPerPurchase: types.Uint64(params.TokensPerPurchase),
			SupplyMode:        uint8(params.SupplyMode),
			InitializedAt:     now,
		}
		if params.SupplyMode == SupplyTransfer {
			source, err := t.prepareSupplySource(
				caller.Key(),
				mint,
				params.SupplySource,
				params.InitialSupply,
				txn,
			)
			if err != nil {
				return err
			}
			cfg.SupplySource = &source
		}
		created, err := t.db.CreateTreasuryConfig(cfg, txn)
		if err != nil {
			return fmt.Errorf("create treasury config: %w", err)
		}
		if !created {
			return failure.ErrAlreadyInitialized
		}
		ret = treasuryConfigFromModel(cfg)
		return t.journal(
			txn,
			"initialize_treasury",
			caller,
			map[string]string{
				"config":              t.ConfigKey().String(),
				"collateral_vault":    vault.String(),
				"token_type":          mint.Key.String(),
				"sol_price":           strconv.FormatUint(params.SolPrice, 10),
				"tokens_per_purchase": strconv.FormatUint(params.TokensPerPurchase, 10),
				"supply_mode":         params.SupplyMode.String(),
			},
		)
	})
	if err != nil {
		return nil, err
	}
	t.logger.Info(
		"treasury initialized",
		"component", "treasury",
		"authority", ret.Authority.String(),
		"token_type", ret.TokenType.String(),
		"collateral_vault", ret.CollateralVault.String(),
		"supply_mode", ret.SupplyMode.String(),
	)
	t.publish(TreasuryInitializedEventType, TreasuryInitializedEvent{Config: *ret})
	return ret, nil
}

// prepareVault returns the vault key, creating the collateral account if it
// does not exist yet
func (t *Treasury) prepareVault(
	vault keys.Key,
	txn *database.Txn,
) (keys.Key, error) {
	if vault.IsZero() {
		vault = t.DefaultVaultKey()
	}
	_, err := t.db.GetCollateralAccount(vault, txn)
	if err == nil {
		return vault, nil
	}
	if !errors.Is(err, models.ErrCollateralAccountNotFound) {
		return keys.Key{}, err
	}
	err = t.db.CreateCollateralAccount(
		&models.CollateralAccount{Key: vault, Owner: vault},
		txn,
	)
	if err != nil {
		return keys.Key{}, fmt.Errorf("create collateral vault: %w", err)
	}
	return vault, nil
}

// prepareMint returns the token type. A zero key selects the derived mint,
// which is created on first use. Any other key must be a registered mint
// under the treasury mint authority.
func (t *Treasury) prepareMint(
	tokenType keys.Key,
	decimals *uint8,
	txn *database.Txn,
) (*models.Mint, error) {
	if !tokenType.IsZero() {
		return t.loadTreasuryMint(tokenType, txn)
	}
	tokenType = t.DefaultMintKey()
	_, err := t.db.GetMint(tokenType, txn)
	if err == nil {
		return t.loadTreasuryMint(tokenType, txn)
	}
	if !errors.Is(err, models.ErrMintNotFound) {
		return nil, err
	}
	mint := &models.Mint{
		Key:           tokenType,
		MintAuthority: t.MintAuthority(),
		Decimals:      DefaultDecimals,
	}
	if decimals != nil {
		mint.Decimals = *decimals
	}
	if err := t.db.CreateMint(mint, txn); err != nil {
		return nil, fmt.Errorf("create mint: %w", err)
	}
	return mint, nil
}

// prepareSupplySource returns the token account purchases are paid from in
// transfer mode and mints the initial supply into it
func (t *Treasury) prepareSupplySource(
	authority keys.Key,
	mint *models.Mint,
	sourceKey keys.Key,
	initialSupply uint64,
	txn *database.Txn,
) (keys.Key, error) {
	var source *models.TokenAccount
	var err error
	if sourceKey.IsZero() {
		source, err = t.openTokenAccount(authority, mint.Key, txn)
	} else {
		source, err = t.loadTokenAccount(sourceKey, txn)
	}
	if err != nil {
		return keys.Key{}, err
	}
	if source.Owner != authority {
		return keys.Key{}, failure.New(
			failure.InvalidTokenAccountOwner,
			"supply source must be owned by the treasury authority",
		)
	}
	if source.Mint != mint.Key {
		return keys.Key{}, failure.ErrTokenMintMismatch
	}
	if initialSupply > 0 {
		if err := t.mintTo(mint, source, initialSupply, txn); err != nil {
			return keys.Key{}, err
		}
	}
	return source.Key, nil
}

// mintTo issues new tokens into an account, keeping supply equal to the sum
// of balances
func (t *Treasury) mintTo(
	mint *models.Mint,
	account *models.TokenAccount,
	amount uint64,
	txn *database.Txn,
) error {
	supply, ok := checked.Add(uint64(mint.Supply), amount)
	if !ok {
		return failure.New(failure.InvalidAmount, "token supply overflow")
	}
	balance, ok := checked.Add(uint64(account.Amount), amount)
	if !ok {
		return failure.New(failure.InvalidAmount, "token balance overflow")
	}
	mint.Supply = types.Uint64(supply)
	account.Amount = types.Uint64(balance)
	if err := t.db.SetMint(mint, txn); err != nil {
		return fmt.Errorf("update mint: %w", err)
	}
	if err := t.db.SetTokenAccount(account, txn); err != nil {
		return fmt.Errorf("update token account: %w", err)
	}
	return nil
}

// Config returns the treasury configuration
func (t *Treasury) Config(ctx context.Context) (*TreasuryConfig, error) {
	txn := t.db.TransactionContext(ctx, false)
	defer txn.Release()
	cfg, err := t.loadConfig(txn)
	if err != nil {
		return nil, err
	}
	return treasuryConfigFromModel(cfg), nil
}

// UpdatePrice sets the collateral price of one purchase
func (t *Treasury) UpdatePrice(
	ctx context.Context,
	caller auth.Caller,
	tokenType keys.Key,
	price uint64,
) (*TreasuryConfig, error) {
	return t.update(
		ctx,
		caller,
		"update_price",
		tokenType,
		price,
		func(cfg *models.TreasuryConfig) {
			cfg.SolPrice = types.Uint64(price)
		},
	)
}

// UpdateVolume sets the number of tokens delivered by one purchase
func (t *Treasury) UpdateVolume(
	ctx context.Context,
	caller auth.Caller,
	tokenType keys.Key,
	volume uint64,
) (*TreasuryConfig, error) {
	return t.update(
		ctx,
		caller,
		"update_volume",
		tokenType,
		volume,
		func(cfg *models.TreasuryConfig) {
			cfg.TokensPerPurchase = types.Uint64(volume)
		},
	)
}

func (t *Treasury) update(
	ctx context.Context,
	caller auth.Caller,
	op string,
	tokenType keys.Key,
	value uint64,
	apply func(*models.TreasuryConfig),
) (ret *TreasuryConfig, err error) {
	ctx, done := t.ops.Start(
		ctx,
		op,
		caller,
		attribute.String("votevault.token_type", tokenType.String()),
	)
	defer func() { done(err) }()
	txn := t.db.TransactionContext(ctx, true)
	err = txn.Do(func(txn *database.Txn) error {
		cfg, err := t.loadConfig(txn)
		if err != nil {
			return err
		}
		if err := auth.Require(caller, cfg.Authority); err != nil {
			return err
		}
		if tokenType != cfg.TokenType {
			return failure.ErrTokenMintMismatch
		}
		if _, err := t.loadTreasuryMint(tokenType, txn); err != nil {
			return err
		}
		if value == 0 {
			return failure.New(failure.InvalidAmount, op+" value is zero")
		}
		apply(cfg)
		if err := t.db.SetTreasuryConfig(cfg, txn); err != nil {
			return fmt.Errorf("update treasury config: %w", err)
		}
		ret = treasuryConfigFromModel(cfg)
		return t.journal(
			txn,
			op,
			caller,
			map[string]string{
				"token_type": tokenType.String(),
				"value":      strconv.FormatUint(value, 10),
			},
		)
	})
	if err != nil {
		return nil, err
	}
	t.logger.Info(
		"treasury updated",
		"component", "treasury",
		"operation", op,
		"value", value,
	)
	t.publish(TreasuryUpdatedEventType, TreasuryUpdatedEvent{
		Operation: op,
		Config:    *ret,
	})
	return ret, nil
}
