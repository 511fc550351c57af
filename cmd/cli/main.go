package main

import "query-genie/internal/cli"

func main() {
	cli.Execute()
}
