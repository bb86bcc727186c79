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

package database

import (
	"github.com/blinklabs-io/votevault/database/models"
	"github.com/blinklabs-io/votevault/keys"
)

// GetTreasuryConfig returns the treasury configuration
func (d *Database) GetTreasuryConfig(
	txn *Txn,
) (*models.TreasuryConfig, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	cfg, err := d.metadata.GetTreasuryConfig(txn.Metadata())
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, models.ErrTreasuryConfigNotFound
	}
	return cfg, nil
}

// CreateTreasuryConfig creates the treasury configuration. It returns false
// if the configuration already exists.
func (d *Database) CreateTreasuryConfig(
	cfg *models.TreasuryConfig,
	txn *Txn,
) (bool, error) {
	owned := false
	if txn == nil {
		txn = d.Transaction(true)
		owned = true
		defer txn.Release()
	}
	created, err := d.metadata.CreateTreasuryConfig(cfg, txn.Metadata())
	if err != nil {
		return false, err
	}
	if owned {
		if err := txn.Commit(); err != nil {
			return false, err
		}
	}
	return created, nil
}

// SetTreasuryConfig saves the treasury configuration
func (d *Database) SetTreasuryConfig(
	cfg *models.TreasuryConfig,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		return txn.Do(func(txn *Txn) error {
			return d.metadata.SetTreasuryConfig(cfg, txn.Metadata())
		})
	}
	return d.metadata.SetTreasuryConfig(cfg, txn.Metadata())
}

// GetMint returns a registered mint
func (d *Database) GetMint(key keys.Key, txn *Txn) (*models.Mint, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	mint, err := d.metadata.GetMint(key, txn.Metadata())
	if err != nil {
		return nil, err
	}
	if mint == nil {
		return nil, models.ErrMintNotFound
	}
	return mint, nil
}

func (d *Database) CreateMint(mint *models.Mint, txn *Txn) error {
	if txn == nil {
		txn = d.Transaction(true)
		return txn.Do(func(txn *Txn) error {
			return d.metadata.CreateMint(mint, txn.Metadata())
		})
	}
	return d.metadata.CreateMint(mint, txn.Metadata())
}

func (d *Database) SetMint(mint *models.Mint, txn *Txn) error {
	if txn == nil {
		txn = d.Transaction(true)
		return txn.Do(func(txn *Txn) error {
			return d.metadata.SetMint(mint, txn.Metadata())
		})
	}
	return d.metadata.SetMint(mint, txn.Metadata())
}

// GetTokenAccount returns a token account
func (d *Database) GetTokenAccount(
	key keys.Key,
	txn *Txn,
) (*models.TokenAccount, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	account, err := d.metadata.GetTokenAccount(key, txn.Metadata())
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, models.ErrTokenAccountNotFound
	}
	return account, nil
}

func (d *Database) CreateTokenAccount(
	account *models.TokenAccount,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		return txn.Do(func(txn *Txn) error {
			return d.metadata.CreateTokenAccount(account, txn.Metadata())
		})
	}
	return d.metadata.CreateTokenAccount(account, txn.Metadata())
}

func (d *Database) SetTokenAccount(
	account *models.TokenAccount,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		return txn.Do(func(txn *Txn) error {
			return d.metadata.SetTokenAccount(account, txn.Metadata())
		})
	}
	return d.metadata.SetTokenAccount(account, txn.Metadata())
}

// GetTokenAccountsByMint returns all token accounts holding a mint
func (d *Database) GetTokenAccountsByMint(
	mint keys.Key,
	txn *Txn,
) ([]models.TokenAccount, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetTokenAccountsByMint(mint, txn.Metadata())
}

// GetTokenAccountsByOwner returns all token accounts of an owner
func (d *Database) GetTokenAccountsByOwner(
	owner keys.Key,
	txn *Txn,
) ([]models.TokenAccount, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetTokenAccountsByOwner(owner, txn.Metadata())
}

// GetCollateralAccount returns a collateral account
func (d *Database) GetCollateralAccount(
	key keys.Key,
	txn *Txn,
) (*models.CollateralAccount, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	account, err := d.metadata.GetCollateralAccount(key, txn.Metadata())
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, models.ErrCollateralAccountNotFound
	}
	return account, nil
}

func (d *Database) CreateCollateralAccount(
	account *models.CollateralAccount,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		return txn.Do(func(txn *Txn) error {
			return d.metadata.CreateCollateralAccount(account, txn.Metadata())
		})
	}
	return d.metadata.CreateCollateralAccount(account, txn.Metadata())
}

func (d *Database) SetCollateralAccount(
	account *models.CollateralAccount,
	txn *Txn,
) error {
	if txn == nil {
		txn = d.Transaction(true)
		return txn.Do(func(txn *Txn) error {
			return d.metadata.SetCollateralAccount(account, txn.Metadata())
		})
	}
	return d.metadata.SetCollateralAccount(account, txn.Metadata())
}

// GetCollateralAccountsByOwner returns all collateral accounts of an owner
func (d *Database) GetCollateralAccountsByOwner(
	owner keys.Key,
	txn *Txn,
) ([]models.CollateralAccount, error) {
	if txn == nil {
		txn = d.Transaction(false)
		defer txn.Release()
	}
	return d.metadata.GetCollateralAccountsByOwner(owner, txn.Metadata())
}
