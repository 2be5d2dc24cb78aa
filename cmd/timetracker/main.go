package main

import "github.com/yaro360/timetracker-saas/internal/cli"

func main() {
	cli.Execute()
}
