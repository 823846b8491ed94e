package main

import "github.com/tesh254/telepub/cmd"

func main() {
	cmd.Execute()
}
