package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"syscall"
	"time"

	"fintrack/internal/app"
	"fintrack/internal/backup"
	"fintrack/internal/config"
	"fintrack/internal/model"
	"fintrack/internal/server"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer a.Close().
// operation identifies the CLI command being run (e.g. "Serve", "BackupNow").
func newApp(operation string) (*app.App, error) {
	cfg, err := readConfig()
	if err != nil {
		return nil, err
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

func readConfig() (*config.Config, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}
	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

var rootCmd = &cobra.Command{
	Use:   "fintrack",
	Short: "Personal finance tracker backend",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		// Generate a fresh signing secret for API tokens.
		secret := make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("generating jwt secret: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		cfg.Auth.JWTSecret = hex.EncodeToString(secret)

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		fmt.Println("Set admin credentials in the config file or via FINTRACK_ADMIN_USERNAME / FINTRACK_ADMIN_PASSWORD.")
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

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Listen Addr: %s\n", cfg.ListenAddr)
		fmt.Printf("Base Dir:    %s\n", cfg.BaseDir)
		fmt.Printf("Data Dir:    %s\n", cfg.DataDir)
		fmt.Printf("Log Dir:     %s\n", cfg.LogDir)
		fmt.Printf("Archive:     %s", cfg.Archive.Type)
		switch cfg.Archive.Type {
		case "filesystem":
			fmt.Printf(" (%s)", cfg.Archive.Root)
		case "s3":
			fmt.Printf(" (s3://%s/%s)", cfg.Archive.S3Bucket, cfg.Archive.S3Prefix)
		}
		fmt.Println()
		return nil
	},
}

// serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Serve")
		if err != nil {
			return err
		}
		defer a.Close()

		return a.Serve()
	},
}

// backup command
var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Manage backups",
}

var backupNowCmd = &cobra.Command{
	Use:   "now",
	Short: "Create a backup",
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")

		a, err := newApp("BackupNow")
		if err != nil {
			return err
		}
		defer a.Close()

		desc, err := a.Service().Create(description, model.BackupManual)
		if err != nil {
			return fmt.Errorf("creating backup: %w", err)
		}

		fmt.Printf("Created backup %s (%d bytes)\n", desc.ID, desc.Size)
		return nil
	},
}

var backupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List backups",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")
		pageSize, _ := cmd.Flags().GetInt("page-size")

		a, err := newApp("BackupList")
		if err != nil {
			return err
		}
		defer a.Close()

		list, err := a.Service().List(page, pageSize)
		if err != nil {
			return err
		}

		if list.Total == 0 {
			fmt.Println("No backups found.")
			return nil
		}

		for _, d := range list.Data {
			marker := ""
			if d.Reconstructed {
				marker = "  [reconstructed]"
			}
			fmt.Printf("%s  %-7s  %s  %8d  %s%s\n",
				d.ID,
				d.Type,
				d.CreatedAt.Format("2006-01-02 15:04:05"),
				d.Size,
				d.Description,
				marker,
			)
		}
		fmt.Printf("\nPage %d/%d (%d total)\n", list.Page, (list.Total+list.PageSize-1)/list.PageSize, list.Total)
		return nil
	},
}

// restore command
var restoreCmd = &cobra.Command{
	Use:   "restore BACKUP_ID",
	Short: "Restore a backup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Restore")
		if err != nil {
			return err
		}
		defer a.Close()

		desc, err := a.Service().Restore(args[0])
		if err != nil {
			return fmt.Errorf("restoring backup: %w", err)
		}

		fmt.Printf("Restored backup %s (%s)\n", desc.ID, desc.Description)
		return nil
	},
}

// settings command
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "View backup settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Settings")
		if err != nil {
			return err
		}
		defer a.Close()

		settings, err := a.Service().Settings().Get()
		if err != nil {
			return err
		}

		fmt.Printf("Auto backup:    %t\n", settings.AutoBackup)
		fmt.Printf("Frequency:      %s\n", settings.BackupFrequency)
		fmt.Printf("Retention days: %d\n", settings.RetentionDays)
		if settings.LastBackupTime != nil {
			fmt.Printf("Last backup:    %s\n", settings.LastBackupTime.Format("2006-01-02 15:04:05"))
		} else {
			fmt.Println("Last backup:    never")
		}
		return nil
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update backup settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SettingsSet")
		if err != nil {
			return err
		}
		defer a.Close()

		var input backup.SettingsInput
		if cmd.Flags().Changed("auto-backup") {
			v, _ := cmd.Flags().GetBool("auto-backup")
			input.AutoBackup = &v
		}
		if cmd.Flags().Changed("frequency") {
			input.BackupFrequency, _ = cmd.Flags().GetString("frequency")
		}
		if cmd.Flags().Changed("retention") {
			v, _ := cmd.Flags().GetInt("retention")
			input.RetentionDays = &v
		}

		settings, err := a.Service().Settings().Update(input)
		if err != nil {
			return fmt.Errorf("updating settings: %w", err)
		}

		fmt.Printf("Settings updated: autoBackup=%t frequency=%s retention=%d\n",
			settings.AutoBackup, settings.BackupFrequency, settings.RetentionDays)
		return nil
	},
}

// token command
var tokenCmd = &cobra.Command{
	Use:   "token USERNAME",
	Short: "Issue an API token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := readConfig()
		if err != nil {
			return err
		}

		fmt.Fprint(os.Stderr, "Password: ")
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("reading password: %w", err)
		}

		if args[0] != cfg.AdminUsername() || string(password) != cfg.AdminPassword() {
			return fmt.Errorf("invalid username or password")
		}

		tokens := server.NewTokenManager(cfg.Auth.JWTSecret, time.Duration(cfg.Auth.TokenTTLHours)*time.Hour)
		token, err := tokens.Issue(args[0])
		if err != nil {
			return fmt.Errorf("issuing token: %w", err)
		}

		fmt.Println(token)
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// backup subcommands
	backupCmd.AddCommand(backupNowCmd)
	backupNowCmd.Flags().StringP("description", "d", "", "Backup description")
	backupCmd.AddCommand(backupListCmd)
	backupListCmd.Flags().IntP("page", "p", 1, "Page number")
	backupListCmd.Flags().Int("page-size", 10, "Backups per page")

	// settings subcommands
	settingsCmd.AddCommand(settingsSetCmd)
	settingsSetCmd.Flags().Bool("auto-backup", true, "Enable automatic backups")
	settingsSetCmd.Flags().String("frequency", "daily", "Backup frequency: daily, weekly or monthly")
	settingsSetCmd.Flags().Int("retention", 30, "Retention window in days")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(tokenCmd)
}
