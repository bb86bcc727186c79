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

package gormstore

import (
	"github.com/blinklabs-io/votevault/database/models"
	"github.com/blinklabs-io/votevault/database/types"
	"github.com/blinklabs-io/votevault/keys"
	"gorm.io/gorm/clause"
)

// keyEq matches the key column, which is a reserved word in MySQL and needs
// dialect quoting
func keyEq(key keys.Key) clause.Eq {
	return clause.Eq{Column: clause.Column{Name: "key"}, Value: key}
}

// GetTreasuryConfig returns the treasury config, or nil if not initialized
func (s *Store) GetTreasuryConfig(
	txn types.Txn,
) (*models.TreasuryConfig, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret models.TreasuryConfig
	found, err := first(db, &ret, "id = ?", models.SingletonID)
	if err != nil || !found {
		return nil, err
	}
	return &ret, nil
}

// CreateTreasuryConfig inserts the treasury config. It returns false if the
// config already exists.
func (s *Store) CreateTreasuryConfig(
	cfg *models.TreasuryConfig,
	txn types.Txn,
) (bool, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return false, err
	}
	cfg.ID = models.SingletonID
	return createIfAbsent(db, cfg)
}

// SetTreasuryConfig saves the treasury config
func (s *Store) SetTreasuryConfig(
	cfg *models.TreasuryConfig,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	cfg.ID = models.SingletonID
	return db.Save(cfg).Error
}

func (s *Store) GetMint(
	key keys.Key,
	txn types.Txn,
) (*models.Mint, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret models.Mint
	found, err := first(db, &ret, keyEq(key))
	if err != nil || !found {
		return nil, err
	}
	return &ret, nil
}

func (s *Store) CreateMint(mint *models.Mint, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Create(mint).Error
}

func (s *Store) SetMint(mint *models.Mint, txn types.Txn) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Save(mint).Error
}

func (s *Store) GetTokenAccount(
	key keys.Key,
	txn types.Txn,
) (*models.TokenAccount, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret models.TokenAccount
	found, err := first(db, &ret, keyEq(key))
	if err != nil || !found {
		return nil, err
	}
	return &ret, nil
}

func (s *Store) CreateTokenAccount(
	account *models.TokenAccount,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Create(account).Error
}

func (s *Store) SetTokenAccount(
	account *models.TokenAccount,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Save(account).Error
}

// GetTokenAccountsByMint returns all token accounts for a mint
func (s *Store) GetTokenAccountsByMint(
	mint keys.Key,
	txn types.Txn,
) ([]models.TokenAccount, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.TokenAccount
	result := db.Where("mint = ?", mint).Order("id ASC").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

// GetTokenAccountsByOwner returns all token accounts held by an owner
func (s *Store) GetTokenAccountsByOwner(
	owner keys.Key,
	txn types.Txn,
) ([]models.TokenAccount, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.TokenAccount
	result := db.Where("owner = ?", owner).Order("id ASC").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}

func (s *Store) GetCollateralAccount(
	key keys.Key,
	txn types.Txn,
) (*models.CollateralAccount, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret models.CollateralAccount
	found, err := first(db, &ret, keyEq(key))
	if err != nil || !found {
		return nil, err
	}
	return &ret, nil
}

func (s *Store) CreateCollateralAccount(
	account *models.CollateralAccount,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Create(account).Error
}

func (s *Store) SetCollateralAccount(
	account *models.CollateralAccount,
	txn types.Txn,
) error {
	db, err := s.resolveDB(txn)
	if err != nil {
		return err
	}
	return db.Save(account).Error
}

// GetCollateralAccountsByOwner returns all collateral accounts held by an owner
func (s *Store) GetCollateralAccountsByOwner(
	owner keys.Key,
	txn types.Txn,
) ([]models.CollateralAccount, error) {
	db, err := s.resolveDB(txn)
	if err != nil {
		return nil, err
	}
	var ret []models.CollateralAccount
	result := db.Where("owner = ?", owner).Order("id ASC").Find(&ret)
	if result.Error != nil {
		return nil, result.Error
	}
	return ret, nil
}
