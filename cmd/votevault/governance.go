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
	"errors"

	"github.com/blinklabs-io/votevault"
	"github.com/blinklabs-io/votevault/api"
	"github.com/blinklabs-io/votevault/auth"
	"github.com/spf13/cobra"
)

func counterCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Manage the proposal counter",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Initialize the proposal counter",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWithNode(cmd, func(ctx context.Context, n *votevault.Node, caller auth.Caller) (any, error) {
					if err := n.Governance().InitializeCounter(ctx, caller); err != nil {
						return nil, err
					}
					return counterResponse(ctx, n)
				})
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Show the next proposal ID",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWithNode(cmd, func(ctx context.Context, n *votevault.Node, _ auth.Caller) (any, error) {
					return counterResponse(ctx, n)
				})
			},
		},
	)
	return cmd
}

func counterResponse(ctx context.Context, n *votevault.Node) (any, error) {
	nextID, err := n.Governance().Counter(ctx)
	if err != nil {
		return nil, err
	}
	return api.CounterResponse{NextID: nextID}, nil
}

func proposalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proposal",
		Short: "Create, vote on and close proposals",
	}
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a proposal owned by the caller",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deadline, err := cmd.Flags().GetInt64("deadline")
			if err != nil {
				return err
			}
			return runWithNode(cmd, func(ctx context.Context, n *votevault.Node, caller auth.Caller) (any, error) {
				id, err := n.Governance().CreateProposal(ctx, caller, deadline)
				if err != nil {
					return nil, err
				}
				return api.CreateProposalResponse{ID: id}, nil
			})
		},
	}
	createCmd.Flags().Int64("deadline", 0, "voting deadline as unix seconds")
	_ = createCmd.MarkFlagRequired("deadline")

	cmd.AddCommand(
		createCmd,
		&cobra.Command{
			Use:   "list",
			Short: "List all proposals",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWithNode(cmd, func(ctx context.Context, n *votevault.Node, _ auth.Caller) (any, error) {
					return n.Governance().Proposals(ctx)
				})
			},
		},
		&cobra.Command{
			Use:   "show <id>",
			Short: "Show a proposal",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := argUint(args, 0, "proposal ID")
				if err != nil {
					return err
				}
				return runWithNode(cmd, func(ctx context.Context, n *votevault.Node, _ auth.Caller) (any, error) {
					return n.Governance().Proposal(ctx, id)
				})
			},
		},
		&cobra.Command{
			Use:   "vote <id>",
			Short: "Cast the caller's vote on a proposal",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := argUint(args, 0, "proposal ID")
				if err != nil {
					return err
				}
				return runWithNode(cmd, func(ctx context.Context, n *votevault.Node, caller auth.Caller) (any, error) {
					if err := n.Governance().CastVote(ctx, caller, id); err != nil {
						return nil, err
					}
					return n.Governance().Proposal(ctx, id)
				})
			},
		},
		&cobra.Command{
			Use:   "has-voted <id> <voter>",
			Short: "Check whether a voter has voted on a proposal",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := argUint(args, 0, "proposal ID")
				if err != nil {
					return err
				}
				voter, err := argKey(args, 1, "voter")
				if err != nil {
					return err
				}
				return runWithNode(cmd, func(ctx context.Context, n *votevault.Node, _ auth.Caller) (any, error) {
					voted, err := n.Governance().HasVoted(ctx, id, voter)
					if err != nil {
						return nil, err
					}
					return api.HasVotedResponse{
						ProposalID: id,
						Voter:      voter,
						Voted:      voted,
					}, nil
				})
			},
		},
		&cobra.Command{
			Use:   "declare <id>",
			Short: "Close a proposal after its deadline and report the tally",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := argUint(args, 0, "proposal ID")
				if err != nil {
					return err
				}
				return runWithNode(cmd, func(ctx context.Context, n *votevault.Node, caller auth.Caller) (any, error) {
					tally, err := n.Governance().DeclareWinner(ctx, caller, id)
					if err != nil {
						return nil, err
					}
					return api.DeclareWinnerResponse{
						ProposalID: id,
						VoteCount:  tally,
					}, nil
				})
			},
		},
	)
	return cmd
}

func journalCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show committed operations in sequence order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := cmd.Flags().GetUint64("from")
			if err != nil {
				return err
			}
			limit, err := cmd.Flags().GetInt("limit")
			if err != nil {
				return err
			}
			if limit < 0 {
				return errors.New("--limit must not be negative")
			}
			return runWithNode(cmd, func(ctx context.Context, n *votevault.Node, _ auth.Caller) (any, error) {
				txn := n.Database().TransactionContext(ctx, false)
				defer txn.Release()
				return n.Database().GetJournal(from, limit, txn)
			})
		},
	}
	cmd.Flags().Uint64("from", 0, "first journal sequence to show")
	cmd.Flags().Int("limit", api.DefaultJournalLimit, "maximum entries to show, 0 for all")
	return cmd
}
