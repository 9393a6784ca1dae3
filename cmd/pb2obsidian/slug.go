// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/pb2obsidian/internal/slug"
)

var slugCmd = &cobra.Command{
	Use:   "slug [title...]",
	Short: "Print the base name a title produces",
	Long: `Slug prints the base name used for the note and its images. Words are
joined with spaces before slugifying. Without a title, or when the title has
no usable characters, a clipboard-YYYYMMDD-HHMMSS name is printed.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), slug.BaseName(strings.Join(args, " "), time.Now()))
	},
}

func init() {
	rootCmd.AddCommand(slugCmd)
}
