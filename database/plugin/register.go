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

package plugin

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
)

type PluginType int

const (
	PluginTypeBlob PluginType = iota + 1
	PluginTypeMetadata
)

// EnvPrefix is prepended to plugin option environment variable names
const EnvPrefix = "VOTEVAULT"

func PluginTypeName(pluginType PluginType) string {
	switch pluginType {
	case PluginTypeBlob:
		return "blob"
	case PluginTypeMetadata:
		return "metadata"
	default:
		return ""
	}
}

func PluginTypeFromName(name string) (PluginType, bool) {
	switch name {
	case "blob":
		return PluginTypeBlob, true
	case "metadata":
		return PluginTypeMetadata, true
	default:
		return 0, false
	}
}

type PluginOptionType int

const (
	PluginOptionTypeString PluginOptionType = iota + 1
	PluginOptionTypeBool
	PluginOptionTypeInt
	PluginOptionTypeUint
)

type PluginOption struct {
	DefaultValue any
	Dest         any
	Name         string
	Description  string
	Type         PluginOptionType
}

type PluginEntry struct {
	NewFromOptionsFunc func() Plugin
	Name               string
	Description        string
	Options            []PluginOption
	Type               PluginType
}

var pluginEntries []PluginEntry

// Register adds a plugin to the registry. A later registration with the same
// type and name replaces the earlier one.
func Register(pluginEntry PluginEntry) {
	for i := range pluginEntries {
		if pluginEntries[i].Type == pluginEntry.Type &&
			pluginEntries[i].Name == pluginEntry.Name {
			pluginEntries[i] = pluginEntry
			return
		}
	}
	pluginEntries = append(pluginEntries, pluginEntry)
}

// GetPlugins returns the registered plugins of a type
func GetPlugins(pluginType PluginType) []PluginEntry {
	ret := []PluginEntry{}
	for _, p := range pluginEntries {
		if p.Type == pluginType {
			ret = append(ret, p)
		}
	}
	return ret
}

// GetPlugin returns a new instance of the named plugin, or nil
func GetPlugin(pluginType PluginType, pluginName string) Plugin {
	entry := findEntry(pluginType, pluginName)
	if entry == nil || entry.NewFromOptionsFunc == nil {
		return nil
	}
	return entry.NewFromOptionsFunc()
}

func findEntry(pluginType PluginType, pluginName string) *PluginEntry {
	for i := range pluginEntries {
		if pluginEntries[i].Type == pluginType &&
			pluginEntries[i].Name == pluginName {
			return &pluginEntries[i]
		}
	}
	return nil
}

// OptionFlagName returns the command line flag name for a plugin option
func OptionFlagName(
	pluginType PluginType,
	pluginName string,
	optionName string,
) string {
	return fmt.Sprintf(
		"%s-%s-%s",
		PluginTypeName(pluginType),
		pluginName,
		optionName,
	)
}

// OptionEnvVar returns the environment variable name for a plugin option
func OptionEnvVar(
	pluginType PluginType,
	pluginName string,
	optionName string,
) string {
	name := EnvPrefix + "_" + OptionFlagName(
		pluginType,
		pluginName,
		optionName,
	)
	return strings.ToUpper(strings.ReplaceAll(name, "-", "_"))
}

// PopulateCmdlineOptions adds a flag for every plugin option to the flag set.
// Flags do not write option values directly; call ProcessCmdlineOptions after
// config and environment processing so that explicit flags win.
func PopulateCmdlineOptions(fs *pflag.FlagSet) error {
	for i := range pluginEntries {
		entry := &pluginEntries[i]
		for _, opt := range entry.Options {
			name := OptionFlagName(entry.Type, entry.Name, opt.Name)
			switch opt.Type {
			case PluginOptionTypeString:
				def, _ := opt.DefaultValue.(string)
				fs.String(name, def, opt.Description)
			case PluginOptionTypeBool:
				def, _ := opt.DefaultValue.(bool)
				fs.Bool(name, def, opt.Description)
			case PluginOptionTypeInt:
				def, _ := opt.DefaultValue.(int)
				fs.Int(name, def, opt.Description)
			case PluginOptionTypeUint:
				def, _ := opt.DefaultValue.(uint64)
				fs.Uint64(name, def, opt.Description)
			default:
				return fmt.Errorf(
					"unknown plugin option type %d for option %s",
					opt.Type,
					name,
				)
			}
		}
	}
	return nil
}

// ProcessCmdlineOptions applies plugin option flags that were explicitly set
func ProcessCmdlineOptions(fs *pflag.FlagSet) error {
	var err error
	for i := range pluginEntries {
		entry := &pluginEntries[i]
		for _, opt := range entry.Options {
			name := OptionFlagName(entry.Type, entry.Name, opt.Name)
			if !fs.Changed(name) {
				continue
			}
			var val any
			var getErr error
			switch opt.Type {
			case PluginOptionTypeString:
				val, getErr = fs.GetString(name)
			case PluginOptionTypeBool:
				val, getErr = fs.GetBool(name)
			case PluginOptionTypeInt:
				val, getErr = fs.GetInt(name)
			case PluginOptionTypeUint:
				val, getErr = fs.GetUint64(name)
			}
			if getErr != nil {
				err = errors.Join(err, getErr)
				continue
			}
			err = errors.Join(err, opt.set(val))
		}
	}
	return err
}

// ProcessEnvVars applies plugin options from environment variables
func ProcessEnvVars() error {
	var err error
	for i := range pluginEntries {
		entry := &pluginEntries[i]
		for _, opt := range entry.Options {
			envName := OptionEnvVar(entry.Type, entry.Name, opt.Name)
			envVal, ok := os.LookupEnv(envName)
			if !ok {
				continue
			}
			val, parseErr := parseOptionValue(opt.Type, envVal)
			if parseErr != nil {
				err = errors.Join(
					err,
					fmt.Errorf("environment variable %s: %w", envName, parseErr),
				)
				continue
			}
			err = errors.Join(err, opt.set(val))
		}
	}
	return err
}

func parseOptionValue(optType PluginOptionType, raw string) (any, error) {
	switch optType {
	case PluginOptionTypeString:
		return raw, nil
	case PluginOptionTypeBool:
		return strconv.ParseBool(raw)
	case PluginOptionTypeInt:
		return strconv.Atoi(raw)
	case PluginOptionTypeUint:
		return strconv.ParseUint(raw, 10, 64)
	default:
		return nil, fmt.Errorf("unknown plugin option type %d", optType)
	}
}

// ProcessConfig applies plugin options from a config file. The map is keyed
// by plugin type name, then plugin name, then option name.
func ProcessConfig(pluginConfig map[string]map[string]map[string]any) error {
	for typeName, plugins := range pluginConfig {
		pluginType, ok := PluginTypeFromName(typeName)
		if !ok {
			return fmt.Errorf("unknown plugin type: %s", typeName)
		}
		for pluginName, opts := range plugins {
			entry := findEntry(pluginType, pluginName)
			if entry == nil {
				return fmt.Errorf(
					"unknown %s plugin: %s",
					typeName,
					pluginName,
				)
			}
			for optName, optVal := range opts {
				var opt *PluginOption
				for j := range entry.Options {
					if entry.Options[j].Name == optName {
						opt = &entry.Options[j]
						break
					}
				}
				if opt == nil {
					return fmt.Errorf(
						"unknown option %q for %s plugin %s",
						optName,
						typeName,
						pluginName,
					)
				}
				// Config values for numeric options may arrive as strings
				if s, isString := optVal.(string); isString &&
					opt.Type != PluginOptionTypeString {
					parsed, err := parseOptionValue(opt.Type, s)
					if err != nil {
						return fmt.Errorf("option %s: %w", optName, err)
					}
					optVal = parsed
				}
				if err := opt.set(optVal); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
