package main

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
)

// Command is one shopctl subcommand.
type Command struct {
	Name        string
	Description string
	Usage       string
	Examples    []string
	// Hidden commands are left out of help unless the session may see them.
	Hidden func() bool
	Run    func(args []string) error
}

func (c *Command) PrintUsage(w io.Writer) {
	fmt.Fprintf(w, "%s\n\n", c.Description)
	fmt.Fprintf(w, "USAGE:\n    %s\n\n", c.Usage)
	if len(c.Examples) > 0 {
		fmt.Fprintf(w, "EXAMPLES:\n")
		for _, example := range c.Examples {
			fmt.Fprintf(w, "    %s\n", example)
		}
	}
}

type CommandRegistry struct {
	commands map[string]*Command
	out      io.Writer
}

func NewCommandRegistry(out io.Writer) *CommandRegistry {
	return &CommandRegistry{commands: make(map[string]*Command), out: out}
}

func (r *CommandRegistry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
}

// Execute runs the command named by args[0].
func (r *CommandRegistry) Execute(args []string) error {
	if len(args) < 1 {
		r.PrintHelp(r.out)
		return fmt.Errorf("no command specified")
	}

	switch args[0] {
	case "help", "-h", "--help":
		r.PrintHelp(r.out)
		return nil
	}

	cmd, ok := r.commands[args[0]]
	if !ok {
		r.PrintHelp(r.out)
		return fmt.Errorf("unknown command: %s", args[0])
	}
	if len(args) > 1 && (args[1] == "-h" || args[1] == "--help") {
		cmd.PrintUsage(r.out)
		return nil
	}
	return cmd.Run(args[1:])
}

func (r *CommandRegistry) PrintHelp(w io.Writer) {
	fmt.Fprintln(w, "shopctl - command line storefront")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "    shopctl [-api URL] [-state FILE] <command> [arguments]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "COMMANDS:")

	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cmd := r.commands[name]
		if cmd.Hidden != nil && cmd.Hidden() {
			continue
		}
		fmt.Fprintf(w, "    %-14s %s\n", cmd.Name, cmd.Description)
	}
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'shopctl <command> -h' for more information on a command.")
}

// table prints tab-aligned rows.
func table(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	printRow := func(cells []string) {
		for i, cell := range cells {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell)
		}
		fmt.Fprintln(tw)
	}
	printRow(headers)
	for _, row := range rows {
		printRow(row)
	}
	return tw.Flush()
}

func formatPrice(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
