package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"equipment-tracker/internal/platform/apierr"
	"equipment-tracker/internal/platform/auth"
	"equipment-tracker/internal/platform/db"
	"equipment-tracker/internal/seeds"
)

var (
	seedAdminID       string
	seedAdminPassword string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the bundled sample data",
	Long: "Loads the sample students, faculty, equipment, locations and usage history.\n" +
		"Rows that already exist are skipped. With --admin-id an admin account is created too.",
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedAdminID, "admin-id", "", "create an admin account with this id")
	seedCmd.Flags().StringVar(&seedAdminPassword, "admin-password", "", "password for --admin-id")
	seedCmd.MarkFlagsRequiredTogether("admin-id", "admin-password")
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer log.Sync()

	data, err := seeds.Sample()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	conn, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer conn.Close()

	svc := newServices(conn, cfg, log)
	rep, err := seeds.Apply(ctx, seeds.Targets{
		Holders:   svc.Holders,
		Equipment: svc.Equipment,
		Locations: svc.Locations,
		Ledger:    svc.Usage,
	}, data, time.Now(), log.Named("seeds"))
	if err != nil {
		log.Error("seed failed", zap.Error(err), zap.Int("created", rep.Created))
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded: %d created, %d skipped\n", rep.Created, rep.Skipped)

	if seedAdminID != "" {
		err := svc.Auth.Register(ctx, seedAdminID, seedAdminPassword, auth.RoleAdmin)
		switch {
		case apierr.Is(err, apierr.CodeConflict):
			fmt.Fprintf(cmd.OutOrStdout(), "admin %q already exists\n", seedAdminID)
		case err != nil:
			return err
		default:
			fmt.Fprintf(cmd.OutOrStdout(), "admin %q created\n", seedAdminID)
		}
	}
	return nil
}
