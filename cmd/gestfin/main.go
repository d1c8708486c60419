package main

import "github.com/gestfin/gestfin/internal/cli"

func main() {
	cli.Execute()
}
