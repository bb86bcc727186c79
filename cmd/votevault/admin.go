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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/blinklabs-io/votevault"
	"github.com/blinklabs-io/votevault/auth"
	"github.com/blinklabs-io/votevault/internal/config"
	"github.com/blinklabs-io/votevault/internal/node"
	"github.com/blinklabs-io/votevault/keys"
	"github.com/spf13/cobra"
)

type nodeFunc func(ctx context.Context, n *votevault.Node, caller auth.Caller) (any, error)

// runWithNode opens the local database, runs fn against it and prints its
// result as JSON. Logs go to stderr so the output stays parseable.
func runWithNode(cmd *cobra.Command, fn nodeFunc) error {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return errors.New("no config found in context")
	}
	caller, err := parseCaller(globalFlags.caller)
	if err != nil {
		return err
	}
	logger := commonRun(os.Stderr)
	n, err := node.New(cfg, logger, nil, false)
	if err != nil {
		return err
	}
	if err := n.Open(); err != nil {
		return err
	}
	result, err := fn(cmd.Context(), n, caller)
	if stopErr := n.Stop(); stopErr != nil {
		err = errors.Join(err, stopErr)
	}
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

// parseCaller turns the --caller flag into a caller identity. The CLI runs
// against a local database, so possession of the data directory stands in
// for signature verification.
func parseCaller(value string) (auth.Caller, error) {
	if value == "" {
		return auth.Anonymous, nil
	}
	key, err := keys.Parse(value)
	if err != nil {
		return auth.Caller{}, fmt.Errorf("invalid caller: %w", err)
	}
	return auth.Verified(key), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func argKey(args []string, idx int, name string) (keys.Key, error) {
	key, err := keys.Parse(args[idx])
	if err != nil {
		return keys.Key{}, fmt.Errorf("invalid %s: %w", name, err)
	}
	return key, nil
}

func argUint(args []string, idx int, name string) (uint64, error) {
	ret, err := strconv.ParseUint(args[idx], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return ret, nil
}

// flagKey parses an optional key flag. An unset flag yields the zero key.
func flagKey(cmd *cobra.Command, name string) (keys.Key, error) {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return keys.Key{}, err
	}
	if value == "" {
		return keys.Key{}, nil
	}
	key, err := keys.Parse(value)
	if err != nil {
		return keys.Key{}, fmt.Errorf("invalid --%s: %w", name, err)
	}
	return key, nil
}
