package main

import "github.com/tessro/mewzy/internal/cli"

func main() {
	cli.Execute()
}
