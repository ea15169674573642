package main

import "contract-chat-mapping/internal/cli"

func main() {
	cli.Execute()
}
