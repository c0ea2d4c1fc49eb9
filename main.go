package main

import "github.com/CultureBridge/bridge-relayer/cli"

func main() {
	cli.NewRootCommand().Execute()
}
