package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// .env 不存在时忽略，生产环境直接使用环境变量
	_ = godotenv.Load()

	opts := &options{}
	cobra.CheckErr(newCmd(opts).Execute())
}
