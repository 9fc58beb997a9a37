package main

import (
	"github.com/marketdesk/relay/internal/cli"
)

func main() {
	cli.Execute()
}
