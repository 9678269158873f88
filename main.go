package main

import "github.com/user/nessus-rider/cmd"

func main() {
	cmd.Execute()
}
