package main

import "github.com/mailendar/mailendar/internal/cmd"

func main() {
	cmd.Execute()
}
