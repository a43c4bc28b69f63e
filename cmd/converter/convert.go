package main

import (
	"bufio"
	"currency-converter/internal/console"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert a single amount and print the result",
	Example: `  converter convert --from USD --to EUR --amount 10
  converter convert -f EUR -t RUB -a 2.5 --retries 3`,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, _ := cmd.Flags().GetString("from")
		to, _ := cmd.Flags().GetString("to")
		amount, _ := cmd.Flags().GetFloat64("amount")

		retries := cfg.Converter.MaxRetries
		if cmd.Flags().Changed("retries") {
			retries, _ = cmd.Flags().GetInt("retries")
		}

		a, err := newApp()
		if err != nil {
			return err
		}

		prompter := console.LinePrompter(bufio.NewReader(cmd.InOrStdin()), cmd.ErrOrStderr())
		s := a.newSession(prompter, retries)
		if err := s.Preset(from, to, amount); err != nil {
			return err
		}

		if err := s.OnInputChanged(cmd.Context()); err != nil {
			return err
		}
		if s.Result() == "" {
			return errors.New("conversion cancelled")
		}

		fmt.Fprintln(cmd.OutOrStdout(), s.Result())
		return nil
	},
}

func init() {
	convertCmd.Flags().StringP("from", "f", "", "source currency code")
	convertCmd.Flags().StringP("to", "t", "", "target currency code")
	convertCmd.Flags().Float64P("amount", "a", 1, "amount to convert")
	convertCmd.Flags().Int("retries", 0, "retry cap for the rates unavailable dialog, 0 for unbounded")
	_ = convertCmd.MarkFlagRequired("from")
	_ = convertCmd.MarkFlagRequired("to")
}
