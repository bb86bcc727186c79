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

package main

import (
	"context"

	"github.com/blinklabs-io/votevault"
	"github.com/blinklabs-io/votevault/api"
	"github.com/blinklabs-io/votevault/auth"
	"github.com/blinklabs-io/votevault/keys"
	"github.com/blinklabs-io/votevault/treasury"
	"github.com/spf13/cobra"
)

func treasuryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "treasury",
		Short: "Configure the treasury and buy tokens",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the treasury with the caller as authority",
		Args:  cobra.NoArgs,
		RunE:  treasuryInitRun,
	}
	initCmd.Flags().String("vault", "", "collateral vault key, derived when unset")
	initCmd.Flags().String("token-type", "", "token mint key, derived when unset")
	initCmd.Flags().Uint64("price", 0, "collateral charged per purchase")
	initCmd.Flags().Uint64("volume", 0, "tokens delivered per purchase")
	initCmd.Flags().String("supply-mode", treasury.SupplyMint.String(), "token supply mode: mint or transfer")
	initCmd.Flags().String("supply-source", "", "supply source token account for transfer mode")
	initCmd.Flags().Uint64("initial-supply", 0, "tokens minted into the supply source in transfer mode")
	initCmd.Flags().Uint8("decimals", 0, "decimals of a mint created at initialization")

	buyCmd := &cobra.Command{
		Use:   "buy <collateral-account> <token-account>",
		Short: "Pay the configured price and receive the configured volume",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := argKey(args, 0, "collateral account")
			if err != nil {
				return err
			}
			destination, err := argKey(args, 1, "token account")
			if err != nil {
				return err
			}
			return runWithNode(cmd, func(ctx context.Context, n *votevault.Node, caller auth.Caller) (any, error) {
				return n.Treasury().BuyTokens(ctx, caller, source, destination)
			})
		},
	}

	cmd.AddCommand(
		initCmd,
		&cobra.Command{
			Use:   "show",
			Short: "Show the treasury configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWithNode(cmd, func(ctx context.Context, n *votevault.Node, _ auth.Caller) (any, error) {
					return n.Treasury().Config(ctx)
				})
			},
		},
		updateCommand("set-price", "Set the collateral charged per purchase", (*treasury.Treasury).UpdatePrice),
		updateCommand("set-volume", "Set the tokens delivered per purchase", (*treasury.Treasury).UpdateVolume),
		buyCmd,
	)
	return cmd
}

func treasuryInitRun(cmd *cobra.Command, _ []string) error {
	var params treasury.InitParams
	var err error
	if params.CollateralVault, err = flagKey(cmd, "vault"); err != nil {
		return err
	}
	if params.TokenType, err = flagKey(cmd, "token-type"); err != nil {
		return err
	}
	if params.SupplySource, err = flagKey(cmd, "supply-source"); err != nil {
		return err
	}
	if params.SolPrice, err = cmd.Flags().GetUint64("price"); err != nil {
		return err
	}
	if params.TokensPerPurchase, err = cmd.Flags().GetUint64("volume"); err != nil {
		return err
	}
	if params.InitialSupply, err = cmd.Flags().GetUint64("initial-supply"); err != nil {
		return err
	}
	supplyMode, err := cmd.Flags().GetString("supply-mode")
	if err != nil {
		return err
	}
	if params.SupplyMode, err = treasury.ParseSupplyMode(supplyMode); err != nil {
		return err
	}
	if cmd.Flags().Changed("decimals") {
		decimals, err := cmd.Flags().GetUint8("decimals")
		if err != nil {
			return err
		}
		params.Decimals = &decimals
	}
	return runWithNode(cmd, func(ctx context.Context, n *votevault.Node, caller auth.Caller) (any, error) {
		return n.Treasury().InitializeTreasury(ctx, caller, params)
	})
}

type updateFunc func(
	*treasury.Treasury,
	context.Context,
	auth.Caller,
	keys.Key,
	uint64,
) (*treasury.TreasuryConfig, error)

func updateCommand(use string, short string, fn updateFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " <token-type> <value>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tokenType, err := argKey(args, 0, "token type")
			if err != nil {
				return err
			}
			value, err := argUint(args, 1, "value")
			if err != nil {
				return err
			}
			return runWithNode(cmd, func(ctx context.Context, n *votevault.Node, caller auth.Caller) (any, error) {
				return fn(n.Treasury(), ctx, caller, tokenType, value)
			})
		},
	}
	return cmd
}

func mintCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Register and inspect token mints",
	}
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new mint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			authority, err := flagKey(cmd, "authority")
			if err != nil {
				return err
			}
			decimals, err := cmd.Flags().GetUint8("decimals")
			if err != nil {
				return err
			}
			return runWithNode(cmd, func(ctx context.Context, n *votevault.Node, caller auth.Caller) (any, error) {
				return n.Treasury().CreateMint(ctx, caller, authority, decimals)
			})
		},
	}
	createCmd.Flags().String("authority", "", "mint authority, the caller when unset")
	createCmd.Flags().Uint8("decimals", 0, "mint decimals")

	cmd.AddCommand(
		createCmd,
		&cobra.Command{
			Use:   "show <mint>",
			Short: "Show a mint",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				key, err := argKey(args, 0, "mint")
				if err != nil {
					return err
				}
				return runWithNode(cmd, func(ctx context.Context, n *votevault.Node, _ auth.Caller) (any, error) {
					return n.Treasury().Mint(ctx, key)
				})
			},
		},
	)
	return cmd
}

func accountCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Open and inspect collateral and token accounts",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "open-collateral",
			Short: "Open a collateral account owned by the caller",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWithNode(cmd, func(ctx context.Context, n *votevault.Node, caller auth.Caller) (any, error) {
					return n.Treasury().OpenCollateralAccount(ctx, caller)
				})
			},
		},
		&cobra.Command{
			Use:   "deposit <collateral-account> <amount>",
			Short: "Deposit collateral into an account",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				key, err := argKey(args, 0, "collateral account")
				if err != nil {
					return err
				}
				amount, err := argUint(args, 1, "amount")
				if err != nil {
					return err
				}
				return runWithNode(cmd, func(ctx context.Context, n *votevault.Node, caller auth.Caller) (any, error) {
					return n.Treasury().DepositCollateral(ctx, caller, key, amount)
				})
			},
		},
		&cobra.Command{
			Use:   "open-token <mint>",
			Short: "Open the caller's token account for a mint",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				mint, err := argKey(args, 0, "mint")
				if err != nil {
					return err
				}
				return runWithNode(cmd, func(ctx context.Context, n *votevault.Node, caller auth.Caller) (any, error) {
					return n.Treasury().OpenTokenAccount(ctx, caller, mint)
				})
			},
		},
		&cobra.Command{
			Use:   "collateral <collateral-account>",
			Short: "Show a collateral account",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				key, err := argKey(args, 0, "collateral account")
				if err != nil {
					return err
				}
				return runWithNode(cmd, func(ctx context.Context, n *votevault.Node, _ auth.Caller) (any, error) {
					return n.Treasury().CollateralAccount(ctx, key)
				})
			},
		},
		&cobra.Command{
			Use:   "tokens <token-account>",
			Short: "Show a token account",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				key, err := argKey(args, 0, "token account")
				if err != nil {
					return err
				}
				return runWithNode(cmd, func(ctx context.Context, n *votevault.Node, _ auth.Caller) (any, error) {
					return n.Treasury().TokenAccount(ctx, key)
				})
			},
		},
		&cobra.Command{
			Use:   "owner <owner>",
			Short: "List the accounts held by an owner",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				owner, err := argKey(args, 0, "owner")
				if err != nil {
					return err
				}
				return runWithNode(cmd, func(ctx context.Context, n *votevault.Node, _ auth.Caller) (any, error) {
					collateral, err := n.Treasury().CollateralAccountsByOwner(ctx, owner)
					if err != nil {
						return nil, err
					}
					tokens, err := n.Treasury().TokenAccountsByOwner(ctx, owner)
					if err != nil {
						return nil, err
					}
					return api.OwnerAccountsResponse{
						Owner:      owner,
						Collateral: collateral,
						Tokens:     tokens,
					}, nil
				})
			},
		},
	)
	return cmd
}
