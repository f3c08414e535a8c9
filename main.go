package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	// 开始安全退出任务
	InitSafeExit()

	err := NewRootCmd().ExecuteContext(context.Background())
	SafeExitInst.Cleanup()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
