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
	"errors"

	"github.com/blinklabs-io/votevault/database"
	"github.com/blinklabs-io/votevault/database/models"
	"github.com/blinklabs-io/votevault/failure"
	"github.com/blinklabs-io/votevault/keys"
)

var errTreasuryNotInitialized = failure.New(
	failure.NotInitialized,
	"treasury is not initialized",
)

func (t *Treasury) loadConfig(
	txn *database.Txn,
) (*models.TreasuryConfig, error) {
	cfg, err := t.db.GetTreasuryConfig(txn)
	if err != nil {
		if errors.Is(err, models.ErrTreasuryConfigNotFound) {
			return nil, errTreasuryNotInitialized
		}
		return nil, err
	}
	return cfg, nil
}

// loadTreasuryMint loads a mint the treasury can issue. Unknown mints and
// mints under another authority fail with InvalidMint.
func (t *Treasury) loadTreasuryMint(
	key keys.Key,
	txn *database.Txn,
) (*models.Mint, error) {
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
	if mint.MintAuthority != t.MintAuthority() {
		return nil, failure.New(
			failure.InvalidMint,
			"mint "+key.String()+" is not controlled by the treasury",
		)
	}
	return mint, nil
}

func (t *Treasury) loadTokenAccount(
	key keys.Key,
	txn *database.Txn,
) (*models.TokenAccount, error) {
	account, err := t.db.GetTokenAccount(key, txn)
	if err != nil {
		if errors.Is(err, models.ErrTokenAccountNotFound) {
			return nil, failure.New(
				failure.AccountNotFound,
				"token account "+key.String()+" not found",
			)
		}
		return nil, err
	}
	return account, nil
}

func (t *Treasury) loadCollateralAccount(
	key keys.Key,
	txn *database.Txn,
) (*models.CollateralAccount, error) {
	account, err := t.db.GetCollateralAccount(key, txn)
	if err != nil {
		if errors.Is(err, models.ErrCollateralAccountNotFound) {
			return nil, failure.New(
				failure.AccountNotFound,
				"collateral account "+key.String()+" not found",
			)
		}
		return nil, err
	}
	return account, nil
}
