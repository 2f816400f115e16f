package cmd

import (
	_ "ragstack-deploy/cmd/deploy"
	_ "ragstack-deploy/cmd/root"
	_ "ragstack-deploy/cmd/server"
)
