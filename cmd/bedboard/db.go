package main

import (
	"bufio"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/jmendes/bedboard/internal/config"
	"github.com/jmendes/bedboard/internal/db"
	"github.com/spf13/cobra"
)

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	cmd.AddCommand(newDBResetCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the bed database",
		Long:  "Migrates all tables and seeds the configured ward complement.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "bedboard.yaml", "path to config file")
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	fmt.Fprintf(out, "Loaded config from %s (%s backend)\n", configPath, cfg.Database.Backend)

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}

	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	seeded, err := db.SeedBeds(gormDB, cfg.Wards, rng)
	if err != nil {
		return err
	}
	if seeded == 0 {
		fmt.Fprintln(out, "Beds already seeded, skipping")
	} else {
		fmt.Fprintf(out, "Seeded %d beds:", seeded)
		for _, w := range cfg.Wards {
			fmt.Fprintf(out, " %s(%d)", w.Name, w.Beds)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintln(out, "\nBed database initialized successfully.")
	return nil
}

func newDBResetCmd() *cobra.Command {
	var (
		configPath string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Wipe and re-seed the bed database",
		Long:  "Deletes every bed and patient record, then re-seeds the configured ward complement.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBReset(cmd, configPath, yes)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "bedboard.yaml", "path to config file")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")
	return cmd
}

func runDBReset(cmd *cobra.Command, configPath string, skipConfirm bool) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if !skipConfirm && !confirmReset(cmd) {
		fmt.Fprintln(out, "Aborted.")
		return nil
	}

	gormDB, err := db.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := db.AutoMigrate(gormDB); err != nil {
		return err
	}

	if err := db.Reset(gormDB); err != nil {
		return err
	}
	fmt.Fprintln(out, "Deleted all bed and patient records")

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	seeded, err := db.SeedBeds(gormDB, cfg.Wards, rng)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Seeded %d beds\n", seeded)

	fmt.Fprintln(out, "\nBed database reset successfully.")
	return nil
}

func confirmReset(cmd *cobra.Command) bool {
	out := cmd.OutOrStdout()
	in := cmd.InOrStdin()

	fmt.Fprintln(out, "WARNING: This will permanently delete all bed and patient records.")
	fmt.Fprintln(out, "This action cannot be undone.")
	fmt.Fprintln(out)
	fmt.Fprint(out, "Type \"yes\" to confirm: ")

	scanner := bufio.NewScanner(in)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()) == "yes"
	}
	return false
}
