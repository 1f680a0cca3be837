package main

import (
	"flag"
	"fmt"
)

type versionCmd struct{ *root }

func (v *versionCmd) FlagSet() *flag.FlagSet { return nil }

func (v *versionCmd) Run() error {
	fmt.Fprintf(v.stdout, "%s version %s\n", v.program, version)
	if commit != "" {
		fmt.Fprintf(v.stdout, "commit %s built %s\n", commit, date)
	}
	return nil
}
