package deploy

import (
	"fmt"

	"ragstack-deploy/cmd/root"
	"ragstack-deploy/internal/config"
	"ragstack-deploy/internal/docker"
	"ragstack-deploy/services"

	"github.com/spf13/cobra"
)

var optDownReset bool

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Stop and remove all stack services",
	Long: `Stop and remove every service of the RAG stack in reverse startup order,
best-effort. With --reset, data volumes are removed as well (destructive,
asks for confirmation).`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := tearDown(); err != nil {
			fmt.Println(err)
		}
	},
}

func tearDown() error {
	cfg := &config.Config
	specs := config.Registry(cfg)
	dc := docker.NewClient(docker.CLIRunner{}, cfg.Deploy.ComposeDir)

	if optDownReset && !confirmDestruction("This removes data volumes (vector data, pulled models) as well.") {
		fmt.Println("Teardown with reset declined, nothing was touched")
		return nil
	}

	record := services.NewRollbackHandler(dc, specs).TearDown(optDownReset)
	if len(record.Failures) > 0 {
		return fmt.Errorf("teardown incomplete, %d operation(s) failed (see log)", len(record.Failures))
	}
	fmt.Printf("All %d services removed\n", len(record.Stopped))
	return nil
}

func init() {
	root.RootCmd.AddCommand(downCmd)

	downCmd.Flags().BoolVar(&optDownReset, "reset", false, "Remove data volumes as well (asks for confirmation)")
	downCmd.Example = `  ragstack down
  ragstack down --reset`
}
