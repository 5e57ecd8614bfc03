package main

import "github.com/oshokin/typr-dist/cmd/typr-install/cmd"

func main() {
	cmd.Execute()
}
