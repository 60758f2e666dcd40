package main

import (
	"github.com/agentbridge/agentbridge/internal/cli"
	"github.com/agentbridge/agentbridge/internal/common/logtrace"
)

func init() {
	logtrace.InitLogger()
}

func main() {
	cli.Execute()
}
