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

package models

import (
	"errors"

	"github.com/blinklabs-io/votevault/database/types"
	"github.com/blinklabs-io/votevault/keys"
)

var (
	ErrMintNotFound              = errors.New("mint not found")
	ErrTokenAccountNotFound      = errors.New("token account not found")
	ErrCollateralAccountNotFound = errors.New("collateral account not found")
)

// Mint is a registered fungible token type
type Mint struct {
	ID            uint         `gorm:"primarykey"`
	Key           keys.Key     `gorm:"uniqueIndex;size:32;not null"`
	MintAuthority keys.Key     `gorm:"index;size:32;not null"`
	Decimals      uint8        `gorm:"not null"`
	Supply        types.Uint64 `gorm:"type:varchar(20);not null"`
}

func (Mint) TableName() string {
	return "mint"
}

// TokenAccount holds a balance of a single mint for an owner
type TokenAccount struct {
	ID     uint         `gorm:"primarykey"`
	Key    keys.Key     `gorm:"uniqueIndex;size:32;not null"`
	Owner  keys.Key     `gorm:"index;size:32;not null"`
	Mint   keys.Key     `gorm:"index;size:32;not null"`
	Amount types.Uint64 `gorm:"type:varchar(20);not null"`
}

func (TokenAccount) TableName() string {
	return "token_account"
}

// CollateralAccount holds a balance of the collateral asset
type CollateralAccount struct {
	ID       uint         `gorm:"primarykey"`
	Key      keys.Key     `gorm:"uniqueIndex;size:32;not null"`
	Owner    keys.Key     `gorm:"index;size:32;not null"`
	Lamports types.Uint64 `gorm:"type:varchar(20);not null"`
}

func (CollateralAccount) TableName() string {
	return "collateral_account"
}
