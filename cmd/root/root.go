package root

import (
	"github.com/spf13/cobra"
)

var RootCmd = &cobra.Command{
	Use:   "ragstack",
	Short: "RAG技术栈部署编排器",
	Long:  `ragstack按依赖顺序部署向量库、模型服务、RAG接口与前端，逐个验证就绪状态，任一环节失败时自动回滚`,
}
