package main

import (
	"github.com/dlsl-isg/reaction-ring/internal/cli"
)

func main() {
	cli.Execute()
}
