package main

import (
	"os"

	"github.com/sadopc/timetrax/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
