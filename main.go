package main

import "clinic-calendar-api/cmd"

func main() {
	cmd.Execute()
}
