// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/pdiddy/pb2obsidian/internal/config"
	"github.com/pdiddy/pb2obsidian/pkg/types"
)

// loadConfig gathers every configuration layer and resolves them.
func loadConfig(cmd *cobra.Command) (types.Config, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	file, used, err := config.LoadFile(cfgFile, config.DefaultSearchDirs()...)
	if err != nil {
		return types.Config{}, err
	}
	if used != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), "Using config file:", used)
	}

	wd, err := os.Getwd()
	if err != nil {
		return types.Config{}, fmt.Errorf("resolving working directory: %w", err)
	}
	exeDir := ""
	if exe, err := os.Executable(); err == nil {
		exeDir = filepath.Dir(exe)
	}
	dotenv, err := config.LoadDotEnv(config.DotEnvPaths(exeDir, wd)...)
	if err != nil {
		return types.Config{}, err
	}

	return config.Resolve(config.Sources{
		Flags:  changedFlags(cmd),
		Env:    config.EnvMap(os.Environ()),
		DotEnv: dotenv,
		File:   file,
	})
}

// changedFlags returns the flags set on the command line keyed by setting
// name (dashes become underscores).
func changedFlags(cmd *cobra.Command) map[string]string {
	flags := make(map[string]string)
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		flags[flagKey(f.Name)] = f.Value.String()
	})
	return flags
}

func flagKey(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}
