package main

import "webboot/cmd"

func main() {
	cmd.Execute()
}
