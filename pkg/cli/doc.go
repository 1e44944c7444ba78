/*
Package cli provides command-line utilities shared by the ganymede command:
output formatters, exit-code aware errors, progress reporting, and signal
handling.

Output formatting supports text, JSON, and CSV:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, result); err != nil {
		return err
	}

CSV output works with any value implementing Tabular.

Signal handling for graceful shutdown:

	ctx, stop := cli.SignalContext()
	defer stop()
*/
package cli
