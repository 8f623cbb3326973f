package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	chat "trade_advisor/internal/feature/chathistory/domain/entity"
)

const analyzeTimeout = 2 * time.Minute

func newAnalyzeCmd(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:     "analyze <ticker>",
		Short:   "Run one analysis cycle and print the record as JSON",
		Example: "  advisor analyze XAUUSD",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), analyzeTimeout)
			defer cancel()

			return withDeps(ctx, open, func(d *Deps) error {
				rec, err := d.Analysis.RunCycle(ctx, args[0])
				if err != nil {
					return err
				}
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rec)
			})
		},
	}
}

func newChatCmd(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Export or import chat histories",
	}

	var out string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write all chat histories as a JSON export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDeps(cmd.Context(), open, func(d *Deps) error {
				exp, err := d.Chat.Export(cmd.Context())
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if out != "" {
					f, err := os.Create(out)
					if err != nil {
						return fmt.Errorf("create %s: %w", out, err)
					}
					defer f.Close()
					w = f
				}
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(exp)
			})
		},
	}
	export.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")

	imp := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a JSON export, overwriting matching tickers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			var exp chat.Export
			if err := json.Unmarshal(b, &exp); err != nil {
				return fmt.Errorf("parse %s: %w", args[0], err)
			}
			return withDeps(cmd.Context(), open, func(d *Deps) error {
				n, err := d.Chat.Import(cmd.Context(), exp)
				if err != nil {
					return err
				}
				printf(cmd.OutOrStdout(), "imported %d ticker(s)\n", n)
				return nil
			})
		},
	}

	cmd.AddCommand(export, imp)
	return cmd
}

func newHashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for auth.operator_password_hash",
		Long:  "Print a bcrypt hash for auth.operator_password_hash. Without an argument the password is read from stdin.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pw string
			if len(args) == 1 {
				pw = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				pw = strings.TrimRight(line, "\r\n")
			}
			if pw == "" {
				return errors.New("password must not be empty")
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
			if err != nil {
				return err
			}
			printf(cmd.OutOrStdout(), "%s\n", hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}
