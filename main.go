package main

import "github.com/stewardbooks/church-finance/cmd"

func main() {
	cmd.Execute()
}
