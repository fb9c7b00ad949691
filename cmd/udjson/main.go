package main

import (
	"github.com/visa-provisioning/udjson/pkg/cli"
)

func main() {
	cli.Execute()
}
