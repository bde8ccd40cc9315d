package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/blog-pipeline/internal/config"
)

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Hash an admin password for ADMIN_PASSWORD_HASH",
	Long:  "Hash a password with bcrypt, applying ADMIN_PASSWORD_PEPPER and BCRYPT_COST from the environment, for use as ADMIN_PASSWORD_HASH.",
	Args:  cobra.ExactArgs(1),
	RunE:  runHashPassword,
}

func init() {
	rootCmd.AddCommand(hashPasswordCmd)
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	authCfg, err := config.LoadAuth()
	if err != nil {
		return err
	}

	hash, err := authCfg.HashPassword(args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
