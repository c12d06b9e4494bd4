package main

import "github.com/ByLCY/barlabel/cmd"

func main() {
	cmd.Execute()
}
