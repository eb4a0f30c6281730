package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"equipment-tracker/internal/equipment_mgmt/usage"
	"equipment-tracker/internal/platform/db"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print dashboard counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer log.Sync()

		conn, err := db.Connect(cmd.Context(), cfg.DB)
		if err != nil {
			return err
		}
		defer conn.Close()

		st, err := newServices(conn, cfg, log).Usage.Stats(cmd.Context())
		if err != nil {
			return err
		}
		return printStats(cmd.OutOrStdout(), st)
	},
}

func printStats(w io.Writer, st *usage.Stats) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Students\t%d\n", st.TotalStudents)
	fmt.Fprintf(tw, "Faculty\t%d\n", st.TotalFaculty)
	fmt.Fprintf(tw, "Equipment\t%d\n", st.TotalEquipment)
	fmt.Fprintf(tw, "Locations\t%d\n", st.TotalLocations)
	fmt.Fprintf(tw, "Checked out\t%d\n", st.CheckedOut)
	fmt.Fprintf(tw, "Usage records\t%d\n", st.TotalUsage)
	return tw.Flush()
}
