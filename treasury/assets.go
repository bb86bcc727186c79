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

// CreateMint registers a new token type with zero supply. A zero authority
// makes the caller the mint authority.
func (t *Treasury) CreateMint(
	ctx context.Context,
	caller auth.Caller,
	authority keys.Key,
	decimals uint8,
) (ret *Mint, err error) {
	ctx, done := t.ops.Start(ctx, "create_mint", caller)
	defer func() { done(err) }()
	if err := auth.RequireVerified(caller); err != nil {
		return nil, err
	}
	if authority.IsZero() {
		authority = caller.Key()
	}
	mint := &models.Mint{
		Key:           keys.New(),
		MintAuthority: authority,
		Decimals:      decimals,
	}
	txn := t.db.TransactionContext(ctx, true)
	err = txn.Do(func(txn *database.Txn) error {
		if err := t.db.CreateMint(mint, txn); err != nil {
			return fmt.Errorf("create mint: %w", err)
		}
		return t.journal(
			txn,
			"create_mint",
			caller,
			map[string]string{
				"mint":           mint.Key.String(),
				"mint_authority": authority.String(),
				"decimals":       strconv.Itoa(int(decimals)),
			},
		)
	})
	if err != nil {
		return nil, err
	}
	return mintFromModel(mint), nil
}

// OpenCollateralAccount creates an empty collateral account owned by the
// caller
func (t *Treasury) OpenCollateralAccount(
	ctx context.Context,
	caller auth.Caller,
) (ret *CollateralAccount, err error) {
	ctx, done := t.ops.Start(ctx, "open_collateral_account", caller)
	defer func() { done(err) }()
	if err := auth.RequireVerified(caller); err != nil {
		return nil, err
	}
	account := &models.CollateralAccount{
		Key:   keys.New(),
		Owner: caller.Key(),
	}
	txn := t.db.TransactionContext(ctx, true)
	err = txn.Do(func(txn *database.Txn) error {
		if err := t.db.CreateCollateralAccount(account, txn); err != nil {
			return fmt.Errorf("create collateral account: %w", err)
		}
		return t.journal(
			txn,
			"open_collateral_account",
			caller,
			map[string]string{"account": account.Key.String()},
		)
	})
	if err != nil {
		return nil, err
	}
	return collateralAccountFromModel(account), nil
}

// DepositCollateral credits collateral to an account. It is the entry point
// for funds provisioned outside the ledger.
func (t *Treasury) DepositCollateral(
	ctx context.Context,
	caller auth.Caller,
	accountKey keys.Key,
	amount uint64,
) (ret *CollateralAccount, err error) {
	ctx, done := t.ops.Start(
		ctx,
		"deposit_collateral",
		caller,
		attribute.String("votevault.account", accountKey.String()),
	)
	defer func() { done(err) }()
	if err := auth.RequireVerified(caller); err != nil {
		return nil, err
	}
	if amount == 0 {
		return nil, failure.New(failure.InvalidAmount, "deposit amount is zero")
	}
	txn := t.db.TransactionContext(ctx, true)
	err = txn.Do(func(txn *database.Txn) error {
		account, err := t.loadCollateralAccount(accountKey, txn)
		if err != nil {
			return err
		}
		balance, ok := checked.Add(uint64(account.Lamports), amount)
		if !ok {
			return failure.New(
				failure.InvalidAmount,
				"deposit overflows account balance",
			)
		}
		account.Lamports = types.Uint64(balance)
		if err := t.db.SetCollateralAccount(account, txn); err != nil {
			return fmt.Errorf("update collateral account: %w", err)
		}
		ret = collateralAccountFromModel(account)
		return t.journal(
			txn,
			"deposit_collateral",
			caller,
			map[string]string{
				"account": accountKey.String(),
				"amount":  strconv.FormatUint(amount, 10),
			},
		)
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// OpenTokenAccount returns the caller's associated token account for a mint,
// creating it if needed
func (t *Treasury) OpenTokenAccount(
	ctx context.Context,
	caller auth.Caller,
	mintKey keys.Key,
) (ret *TokenAccount, err error) {
	ctx, done := t.ops.Start(
		ctx,
		"open_token_account",
		caller,
		attribute.String("votevault.mint", mintKey.String()),
	)
	defer func() { done(err) }()
	if err := auth.RequireVerified(caller); err != nil {
		return nil, err
	}
	txn := t.db.TransactionContext(ctx, true)
	err = txn.Do(func(txn *database.Txn) error {
		account, err := t.openTokenAccount(caller.Key(), mintKey, txn)
		if err != nil {
			return err
		}
		ret = tokenAccountFromModel(account)
		return t.journal(
			txn,
			"open_token_account",
			caller,
			map[string]string{
				"account": account.Key.String(),
				"mint":    mintKey.String(),
			},
		)
	})
	if err != nil {
		return nil, err
	}
	return ret, nil
}

func (t *Treasury) openTokenAccount(
	owner keys.Key,
	mintKey keys.Key,
	txn *database.Txn,
) (*models.TokenAccount, error) {
	if _, err := t.db.GetMint(mintKey, txn); err != nil {
		if errors.Is(err, models.ErrMintNotFound) {
			return nil, failure.New(
				failure.InvalidMint,
				"mint "+mintKey.String()+" is not registered",
			)
		}
		return nil, err
	}
	key := t.TokenAccountKey(owner, mintKey)
	account, err := t.db.GetTokenAccount(key, txn)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, models.ErrTokenAccountNotFound) {
		return nil, err
	}
	account = &models.TokenAccount{
		Key:   key,
		Owner: owner,
		Mint:  mintKey,
	}
	if err := t.db.CreateTokenAccount(account, txn); err != nil {
		return nil, fmt.Errorf("create token account: %w", err)
	}
	return account, nil
}

func (t *Treasury) Mint(ctx context.Context, key keys.Key) (*Mint, error) {
	txn := t.db.TransactionContext(ctx, false)
	defer txn.Release()
	mint, err := t.db.GetMint(key, txn)
	if err != nil {
		if errors.Is(err, models.ErrMintNotFound) {
			return nil, failure.New(
				failure.InvalidMint,
				"mint "+key.String()+" is not registered",
			)
		}
		return nil, err
	}
	return mintFromModel(mint), nil
}

func (t *Treasury) TokenAccount(
	ctx context.Context,
	key keys.Key,
) (*TokenAccount, error) {
	txn := t.db.TransactionContext(ctx, false)
	defer txn.Release()
	account, err := t.loadTokenAccount(key, txn)
	if err != nil {
		return nil, err
	}
	return tokenAccountFromModel(account), nil
}

func (t *Treasury) CollateralAccount(
	ctx context.Context,
	key keys.Key,
) (*CollateralAccount, error) {
	txn := t.db.TransactionContext(ctx, false)
	defer txn.Release()
	account, err := t.loadCollateralAccount(key, txn)
	if err != nil {
		return nil, err
	}
	return collateralAccountFromModel(account), nil
}

// TokenAccountsByOwner returns every token account held by an owner
func (t *Treasury) TokenAccountsByOwner(
	ctx context.Context,
	owner keys.Key,
) ([]TokenAccount, error) {
	txn := t.db.TransactionContext(ctx, false)
	defer txn.Release()
	tmpAccounts, err := t.db.GetTokenAccountsByOwner(owner, txn)
	if err != nil {
		return nil, err
	}
	ret := make([]TokenAccount, 0, len(tmpAccounts))
	for i := range tmpAccounts {
		ret = append(ret, *tokenAccountFromModel(&tmpAccounts[i]))
	}
	return ret, nil
}

// CollateralAccountsByOwner returns every collateral account held by an owner
func (t *Treasury) CollateralAccountsByOwner(
	ctx context.Context,
	owner keys.Key,
) ([]CollateralAccount, error) {
	txn := t.db.TransactionContext(ctx, false)
	defer txn.Release()
	tmpAccounts, err := t.db.GetCollateralAccountsByOwner(owner, txn)
	if err != nil {
		return nil, err
	}
	ret := make([]CollateralAccount, 0, len(tmpAccounts))
	for i := range tmpAccounts {
		ret = append(ret, *collateralAccountFromModel(&tmpAccounts[i]))
	}
	return ret, nil
}

// CirculatingSupply sums the balances of every token account holding a mint
func (t *Treasury) CirculatingSupply(
	ctx context.Context,
	mintKey keys.Key,
) (uint64, error) {
	txn := t.db.TransactionContext(ctx, false)
	defer txn.Release()
	tmpAccounts, err := t.db.GetTokenAccountsByMint(mintKey, txn)
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, account := range tmpAccounts {
		var ok bool
		total, ok = checked.Add(total, uint64(account.Amount))
		if !ok {
			return 0, fmt.Errorf("circulating supply of %s overflows", mintKey)
		}
	}
	return total, nil
}
