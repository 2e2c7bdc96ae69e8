package main

import (
	"fmt"
	"text/tabwriter"
)

func (cli *commandLine) accessCodes() error {
	w := tabwriter.NewWriter(cli.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tPLAN\tTRIAL DAYS\tDISCOUNT %\tDESCRIPTION")
	for _, c := range cli.codes.All() {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", c.Code, c.Plan, c.TrialDays, c.DiscountPercent.String(), c.Description)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "\nmatch policy: %s\n", cli.codes.Policy())
	return nil
}
