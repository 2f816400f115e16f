package services

import (
	"encoding/json"
	"os"
	"path/filepath"

	"ragstack-deploy/internal/env"
	"ragstack-deploy/internal/logger"
	"ragstack-deploy/internal/models"
)

const resultFileName = "deployment.json"

/**
 * Save the deployment result to the state directory
 * @param {*models.DeploymentResult} result - Final run aggregate
 * @description
 * - Written once per run to $HOME/.ragstack/state/deployment.json
 * - Consumed by the status command and the observation API; a save failure
 *   is logged but never alters the run outcome
 */
func SaveResult(result *models.DeploymentResult) {
	stateDir := env.StateDir()
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		logger.Errorf("Failed to create state directory: %v", err)
		return
	}

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Errorf("Failed to marshal deployment result: %v", err)
		return
	}

	stateFile := filepath.Join(stateDir, resultFileName)
	if err := os.WriteFile(stateFile, jsonData, 0644); err != nil {
		logger.Errorf("Failed to write deployment result: %v", err)
		return
	}

	logger.Infof("Deployment result saved to %s", stateFile)
}

/**
 * Load the last persisted deployment result
 * @returns {*models.DeploymentResult, error} Last result; os.ErrNotExist
 *          when no deployment has been recorded yet
 */
func LoadResult() (*models.DeploymentResult, error) {
	stateFile := filepath.Join(env.StateDir(), resultFileName)
	jsonData, err := os.ReadFile(stateFile)
	if err != nil {
		return nil, err
	}

	var result models.DeploymentResult
	if err := json.Unmarshal(jsonData, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
