package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vaultIndexer/internal/manifest"
	"vaultIndexer/internal/vaultfactory"
)

func runValidate(cmd *cobra.Command, args []string) error {
	path := "./subgraph.yaml"
	if len(args) == 1 {
		path = args[0]
	}

	m, err := manifest.Load(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, b := range m.Bindings() {
		fmt.Fprintf(out, "%s %s start=%d\n", b.Name, b.Address.Hex(), b.StartBlock)
		for _, kind := range b.Kinds() {
			sig, err := vaultfactory.EventSignature(kind)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "  %s -> %s\n", sig, b.Handlers[kind].Name)
		}
	}
	return nil
}
