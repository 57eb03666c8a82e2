package main

import "github.com/vibast-solutions/ms-go-account-settings/cmd"

func main() {
	cmd.Execute()
}
