package main

import (
	"currency-converter/internal/console"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"i"},
	Short:   "Convert interactively; every change of amount or currency converts again",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c := console.New(cmd.InOrStdin(), cmd.OutOrStdout(), cfg.Style, log)
		s := a.newSession(c.Prompter(), cfg.Converter.MaxRetries)
		return c.Run(ctx, s)
	},
}
