package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func main() {
	app := cli.NewApp()
	app.Name = "vault"
	app.Usage = "Operate Vault contract deployed to Neo blockchain"
	app.Commands = []cli.Command{
		deployCommand,
		inspectCommand,
		storageCommand,
		depositCommand,
		chargeCommand,
		withdrawCommand,
		reconcileCommand,
		watchCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
