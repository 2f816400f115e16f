package deploy

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ragstack-deploy/cmd/root"
	"ragstack-deploy/internal/config"
	"ragstack-deploy/internal/docker"
	"ragstack-deploy/internal/models"
	"ragstack-deploy/internal/utils"
	"ragstack-deploy/services"

	"github.com/iancoleman/orderedmap"
	"github.com/spf13/cobra"
)

var optReset bool

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Deploy the full RAG stack",
	Long: `Deploy every service of the RAG stack in dependency order (vector store,
model server, RAG API, web front end), verify readiness per service and roll
everything back on the first failure. With --reset, existing containers AND
their data volumes are removed first; this is destructive and asks for
confirmation.`,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runDeployment())
	},
}

/**
 * Run one full deployment and return the process exit code
 * @returns {int} 0 on success, distinct non-zero codes per failure category
 * @description
 * - Configuration is validated before any service is touched
 * - SIGINT/SIGTERM during any phase triggers rollback before exiting
 * - Exactly one terminal message is printed per run
 */
func runDeployment() int {
	cfg := &config.Config
	if err := config.Validate(cfg); err != nil {
		fmt.Println(err)
		return models.ExitCode(err)
	}

	specs := config.Registry(cfg)
	dc := docker.NewClient(docker.CLIRunner{}, cfg.Deploy.ComposeDir)

	if optReset {
		if !confirmDestruction("This removes all stack containers AND data volumes (vector data, pulled models).") {
			fmt.Println("Reset declined, nothing was touched")
			return 1
		}
		record := services.NewRollbackHandler(dc, specs).TearDown(true)
		fmt.Printf("Reset done, %d service(s) removed\n", len(record.Stopped))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deployer := services.NewDeployer(cfg, specs, dc)
	result, err := deployer.Run(ctx)

	services.SaveResult(result)
	services.GetDeployMetrics().Push(cfg.Metric.Pushgateway)
	printResult(result)

	if result.Interrupted {
		return models.ExitInterrupt
	}
	return models.ExitCode(err)
}

/**
 *	Fields displayed in list format
 */
type Deploy_Columns struct {
	Service  string `json:"service"`
	Phase    string `json:"phase"`
	Attempts int    `json:"attempts"`
	Error    string `json:"error"`
}

// printResult 打印逐服务状态表和唯一的终态消息
func printResult(result *models.DeploymentResult) {
	var dataList []*orderedmap.OrderedMap
	for _, svc := range result.Services {
		row := Deploy_Columns{
			Service:  svc.Name,
			Phase:    string(svc.Phase),
			Attempts: svc.Attempts,
			Error:    "-",
		}
		if svc.LastError != "" {
			row.Error = svc.LastError
		}
		recordMap, _ := utils.StructToOrderedMap(row)
		dataList = append(dataList, recordMap)
	}
	utils.PrintFormat(dataList)

	switch {
	case result.Success && result.Warning != "":
		fmt.Printf("Deployment succeeded with warning: %s\n", result.Warning)
	case result.Success:
		fmt.Printf("Deployment succeeded, all %d services ready\n", len(result.Services))
	case result.Interrupted:
		fmt.Printf("Deployment interrupted during service '%s' (%s), launched services were rolled back\n",
			result.Services[result.FailedIndex].Name, result.FailedPhase)
	default:
		fmt.Printf("Deployment failed at service '%s' in phase %s: %s\n",
			result.Services[result.FailedIndex].Name, result.FailedPhase, result.FailedError)
	}
}

func init() {
	root.RootCmd.AddCommand(upCmd)

	upCmd.Flags().BoolVar(&optReset, "reset", false, "Remove existing containers and data volumes before deploying (asks for confirmation)")
	upCmd.Example = `  ragstack up
  ragstack up --reset`
}
