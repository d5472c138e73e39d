package main

import (
	"context"
	"fmt"
	"time"

	"go-storefront/services"
	"go-storefront/utils"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Replace the catalog with the starter products",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		st, err := openStore(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer st.Close(context.Background())

		products, err := services.NewCatalogService(st).Seed(ctx)
		if err != nil {
			return err
		}
		for _, p := range products {
			fmt.Printf("  %s  %-10s %s\n", p.ID.Hex(), p.Name, p.Price.StringFixed(3))
		}
		fmt.Printf("✓ Seeded %d products\n", len(products))
		return nil
	},
}

var makeAdminCmd = &cobra.Command{
	Use:   "make-admin",
	Short: "Grant admin rights to an existing account",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		revoke, _ := cmd.Flags().GetBool("revoke")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		st, err := openStore(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		defer st.Close(context.Background())

		tokens, err := utils.NewTokenManager(cfg.Secrets(), cfg.JWTExpiresIn)
		if err != nil {
			return err
		}
		if err := services.NewAccountService(st, tokens).SetAdmin(ctx, email, !revoke); err != nil {
			return err
		}

		if revoke {
			fmt.Printf("✓ %s is no longer an admin\n", email)
		} else {
			fmt.Printf("✓ %s is now an admin\n", email)
		}
		return nil
	},
}
