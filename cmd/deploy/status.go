package deploy

import (
	"context"
	"fmt"
	"os"
	"strings"

	"ragstack-deploy/cmd/root"
	"ragstack-deploy/internal/config"
	"ragstack-deploy/internal/docker"
	"ragstack-deploy/internal/models"
	"ragstack-deploy/internal/utils"
	"ragstack-deploy/services"

	"github.com/iancoleman/orderedmap"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [service name]",
	Short: "Show the last deployment result and live health",
	Long:  "Show per-service outcome of the last deployment run together with a live health probe. If a service name is given, only detailed information of that service is shown.",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := showStatus(context.Background(), args); err != nil {
			fmt.Println(err)
		}
	},
}

/**
 *	Fields displayed in list format
 */
type Status_Columns struct {
	Service  string `json:"service"`
	Phase    string `json:"phase"`
	Attempts int    `json:"attempts"`
	Healthy  string `json:"healthy"`
	Ready    string `json:"ready"`
}

func showStatus(ctx context.Context, args []string) error {
	cfg := &config.Config
	specs := config.Registry(cfg)
	dc := docker.NewClient(docker.CLIRunner{}, cfg.Deploy.ComposeDir)
	monitor := services.NewMonitor(cfg, specs, dc)

	result, err := services.LoadResult()
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no deployment recorded yet, run 'ragstack up' first")
		}
		return err
	}

	if len(args) == 1 {
		return showServiceStatus(ctx, specs, result, monitor, args[0])
	}

	live := monitor.Check(ctx)
	healthyByName := map[string]bool{}
	for _, svc := range live.Services {
		healthyByName[svc.Name] = svc.Healthy
	}

	var dataList []*orderedmap.OrderedMap
	for _, svc := range result.Services {
		row := Status_Columns{
			Service:  svc.Name,
			Phase:    string(svc.Phase),
			Attempts: svc.Attempts,
			Healthy:  fmt.Sprintf("%v", healthyByName[svc.Name]),
			Ready:    "-",
		}
		if !svc.ReadyTime.IsZero() {
			row.Ready = svc.ReadyTime.Format("2006-01-02 15:04:05")
		}
		recordMap, _ := utils.StructToOrderedMap(row)
		dataList = append(dataList, recordMap)
	}
	utils.PrintFormat(dataList)

	if result.Warning != "" {
		fmt.Printf("Warning: %s\n", result.Warning)
	}
	return nil
}

/**
 * Show detailed information of one service
 * @param {string} name - Service name from the registry
 */
func showServiceStatus(ctx context.Context, specs []models.ServiceSpec, result *models.DeploymentResult, monitor *services.Monitor, name string) error {
	var spec *models.ServiceSpec
	for i := range specs {
		if specs[i].Name == name {
			spec = &specs[i]
			break
		}
	}
	if spec == nil {
		return fmt.Errorf("service named '%s' not found", name)
	}

	fmt.Printf("=== Detailed information of service '%s' ===\n", name)
	fmt.Printf("Label: %s\n", spec.Label)
	fmt.Printf("Compose dir: %s\n", spec.Dir)
	fmt.Printf("Container: %s\n", spec.Container)
	var gates []string
	for _, gate := range spec.Gates {
		gates = append(gates, string(gate.Type))
	}
	fmt.Printf("Readiness gates: %s\n", strings.Join(gates, " -> "))
	if spec.Port > 0 {
		fmt.Printf("Port %d listening: %v\n", spec.Port, utils.CheckPortConnectable("localhost", spec.Port))
	}

	for _, svc := range result.Services {
		if svc.Name != name {
			continue
		}
		fmt.Printf("Last run phase: %s\n", svc.Phase)
		fmt.Printf("Probe attempts: %d\n", svc.Attempts)
		if svc.LastError != "" {
			fmt.Printf("Last error: %s\n", svc.LastError)
		}
	}

	live := monitor.Check(ctx)
	for _, svc := range live.Services {
		if svc.Name == name {
			fmt.Printf("Currently healthy: %v\n", svc.Healthy)
			if svc.Detail != "" {
				fmt.Printf("Health detail: %s\n", svc.Detail)
			}
		}
	}
	return nil
}

func init() {
	root.RootCmd.AddCommand(statusCmd)

	statusCmd.Example = `  ragstack status
  ragstack status ollama`
}
