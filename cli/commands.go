// Package cli provides the Cobra-based CLI for the pharmacy storefront.
package cli

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"pharmacart/cart"
	"pharmacart/catalog"
	"pharmacart/httpclient"
)

var (
	rootCmd = &cobra.Command{
		Use:   "pharma",
		Short: "A pharmacy storefront catalog and cart client",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// IMPORTANT: allow tests to inject stores
			if catalogStore != nil && cartStore != nil {
				return nil
			}

			if cfg := viper.GetString("config"); cfg != "" {
				viper.SetConfigFile(cfg)
				if err := viper.ReadInConfig(); err != nil {
					return err
				}
			}

			lvlStr := strings.ToLower(viper.GetString("log-level"))
			lvl := slog.LevelInfo
			switch lvlStr {
			case "debug":
				lvl = slog.LevelDebug
			case "warn", "warning":
				lvl = slog.LevelWarn
			case "error":
				lvl = slog.LevelError
			}
			slog.SetDefault(slog.New(
				slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}),
			))

			client := httpclient.New(viper.GetString("api-base-url"), slog.Default())
			catalogStore = catalog.NewStore(client, slog.Default())
			cartStore = cart.NewStore()
			return nil
		},
	}

	catalogStore *catalog.Store
	cartStore    *cart.Store
)

func init() {
	// shell
	shellCmd := &cobra.Command{
		Use:   "shell",
		Short: "Interactive storefront mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := bufio.NewReader(os.Stdin)
			for {
				fmt.Print("pharma> ")
				line, err := r.ReadString('\n')
				if err != nil {
					return nil
				}
				line = strings.TrimSpace(line)
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					return nil
				}
				rootCmd.SetArgs(strings.Fields(line))
				if err := rootCmd.Execute(); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
				rootCmd.SetArgs(nil)
			}
		},
	}
	rootCmd.AddCommand(shellCmd)

	rootCmd.PersistentFlags().String("api-base-url", "", "assortment API base URL")
	rootCmd.PersistentFlags().String("cart-file", "data/cart.json", "cart snapshot path")
	rootCmd.PersistentFlags().String("config", "", "config file")
	rootCmd.PersistentFlags().String("log-level", "info", "log level")

	viper.BindPFlag("api-base-url", rootCmd.PersistentFlags().Lookup("api-base-url"))
	viper.BindPFlag("cart-file", rootCmd.PersistentFlags().Lookup("cart-file"))
	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.SetEnvPrefix("PHARMA")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func Execute() error {
	return rootCmd.Execute()
}
