package deploy

import (
	"context"
	"fmt"
	"os"

	"ragstack-deploy/cmd/root"
	"ragstack-deploy/internal/config"
	"ragstack-deploy/internal/docker"
	"ragstack-deploy/internal/utils"
	"ragstack-deploy/services"

	"github.com/iancoleman/orderedmap"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check live health of all stack services",
	Long:  `Evaluate every service's readiness gates once, without deploying anything. Exits non-zero when any service is unhealthy.`,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(checkStack(context.Background()))
	},
}

/**
 *	Fields displayed in list format
 */
type Check_Columns struct {
	Service string `json:"service"`
	Healthy string `json:"healthy"`
	Gate    string `json:"gate"`
	Detail  string `json:"detail"`
}

func checkStack(ctx context.Context) int {
	cfg := &config.Config
	specs := config.Registry(cfg)
	dc := docker.NewClient(docker.CLIRunner{}, cfg.Deploy.ComposeDir)

	response := services.NewMonitor(cfg, specs, dc).Check(ctx)

	var dataList []*orderedmap.OrderedMap
	for _, svc := range response.Services {
		row := Check_Columns{
			Service: svc.Name,
			Healthy: fmt.Sprintf("%v", svc.Healthy),
			Gate:    "-",
			Detail:  "-",
		}
		if !svc.Healthy {
			row.Gate = svc.Gate
			row.Detail = svc.Detail
		}
		recordMap, _ := utils.StructToOrderedMap(row)
		dataList = append(dataList, recordMap)
	}
	utils.PrintFormat(dataList)
	fmt.Printf("Overall: %s (%d/%d checks passed)\n",
		response.OverallStatus, response.PassedChecks, response.TotalChecks)

	if response.FailedChecks > 0 {
		return 1
	}
	return 0
}

func init() {
	root.RootCmd.AddCommand(checkCmd)

	checkCmd.Example = `  ragstack check`
}
