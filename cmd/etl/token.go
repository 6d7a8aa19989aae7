package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/JanneVa/Data-Analysis-and-Visualization/internal/utils"
)

var tokenFlags struct {
	sub string
	ttl time.Duration
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an operator token for POST /v1/reload",
	RunE: func(cmd *cobra.Command, args []string) error {
		tok, err := utils.NewOperatorToken(cfg.JWTSecret, tokenFlags.sub, tokenFlags.ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok.Token)
		fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", tok.Exp.Format(time.RFC3339))
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenFlags.sub, "sub", "", "Token subject (operator name)")
	tokenCmd.Flags().DurationVar(&tokenFlags.ttl, "ttl", 60*time.Minute, "Token lifetime")
	_ = tokenCmd.MarkFlagRequired("sub")
	rootCmd.AddCommand(tokenCmd)
}
