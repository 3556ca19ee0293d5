package main

import "mazzeh-api/cmd"

func main() {
	cmd.Execute()
}
