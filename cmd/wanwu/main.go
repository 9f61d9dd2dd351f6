package main

import (
	"os"

	"github.com/raywall/wanwu/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
