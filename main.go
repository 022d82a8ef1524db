package main

import "github.com/frahmantamala/expense-tracker-client/cmd"

func main() {
	cmd.Execute()
}
