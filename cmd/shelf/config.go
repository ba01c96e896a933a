package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"shelf-go/internal/app"
	"shelf-go/internal/config"
	"shelf-go/internal/encryption"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file and generate the backup key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		skipKeys, _ := cmd.Flags().GetBool("no-keys")
		lang, _ := cmd.Flags().GetString("lang")

		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults.BaseDir)
		if lang != "" {
			cfg.Language = lang
		}
		if err := config.Init(defaults.ConfigPath, cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults.ConfigPath)
		fmt.Printf("Base Dir: %s\n", defaults.BaseDir)

		if skipKeys {
			return nil
		}

		enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
		if err != nil {
			return fmt.Errorf("creating encryptor: %w", err)
		}
		passphrase, err := readNewPassphrase()
		if err != nil {
			return err
		}
		if err := enc.Setup(passphrase); err != nil {
			if errors.Is(err, encryption.ErrAlreadyConfigured) {
				fmt.Println("Backup keys already exist, keeping them.")
				return nil
			}
			return fmt.Errorf("generating backup keys: %w", err)
		}
		fmt.Printf("Backup keys written to %s\n", cfg.Encryption.PublicKeyPath)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults.ConfigPath)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		rows := [][]string{
			{"Data Dir", cfg.DataDir},
			{"Log Dir", cfg.LogDir},
			{"Log Level", cfg.LogLevel},
			{"Language", cfg.Language},
			{"Store", cfg.Store.Type},
			{"Encryption", cfg.Encryption.Type},
			{"Public Key", cfg.Encryption.PublicKeyPath},
			{"Listen", cfg.Server.Listen},
		}
		switch cfg.Store.Type {
		case "filesystem":
			rows = append(rows, []string{"FS Root", cfg.Store.FSRoot})
		case "sqlite":
			rows = append(rows, []string{"SQLite Path", cfg.Store.SQLitePath})
		case "redis":
			rows = append(rows, []string{"Redis", fmt.Sprintf("%s db=%d prefix=%q", cfg.Store.RedisAddr, cfg.Store.RedisDB, cfg.Store.RedisPrefix)})
		case "s3":
			rows = append(rows, []string{"S3", fmt.Sprintf("s3://%s/%s", cfg.Store.S3Bucket, cfg.Store.S3Prefix)})
		}

		fmt.Printf("Configuration from %s:\n\n", defaults.ConfigPath)
		fmt.Println(renderTable([]string{"Key", "Value"}, rows))
		return nil
	},
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the configured store is reachable and up to date",
	Args:  cobra.NoArgs,
	RunE: withApp("config check", func(cmd *cobra.Command, args []string, a *app.ShelfApp) error {
		status, err := a.CheckStore()
		if err != nil {
			return err
		}

		lastWrite := "-"
		if status.LastWrite > 0 {
			lastWrite = time.UnixMilli(status.LastWrite).Format(time.RFC3339)
		}
		keys := "missing (run `shelf config init`)"
		if status.BackupKeys {
			keys = "ok"
		}
		fmt.Println(renderTable([]string{"Check", "Result"}, [][]string{
			{"Store", status.Type + " ok"},
			{"Bookmarks", fmt.Sprint(status.Bookmarks)},
			{"Categories", fmt.Sprint(status.Categories)},
			{"Last write", lastWrite},
			{"Backup keys", keys},
		}))
		return nil
	}),
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configCheckCmd)
	configInitCmd.Flags().Bool("no-keys", false, "Skip backup key generation")
	configInitCmd.Flags().String("lang", "", "Initial interface language (cn or en)")
}
