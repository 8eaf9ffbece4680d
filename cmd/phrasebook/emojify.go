package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"phrasebook/internal/config"
	"phrasebook/internal/glyph"
)

var emojifyCount int

var emojifyCmd = &cobra.Command{
	Use:   "emojify TEXT...",
	Short: "Turn text into emojis with the configured strategy",
	Long: `Run the text-to-emoji demo from the command line.

Examples:
  # Random strategy, five glyphs
  phrasebook emojify "pizza night in Rome"

  # Category-style output
  phrasebook emojify --count 1 Travel`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEmojify,
}

func init() {
	emojifyCmd.Flags().IntVar(&emojifyCount, "count", glyph.DemoOptions.Count, "glyphs to draw with the random strategy")
}

func runEmojify(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	g, err := newGenerator(cfg.Glyph)
	if err != nil {
		return err
	}

	opts := glyph.DemoOptions
	opts.Count = emojifyCount
	out, err := g.Generate(cmd.Context(), strings.Join(args, " "), opts)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}
