package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"cronplan/core"
	"cronplan/internal/errwrap"

	"github.com/urfave/cli"
)

var errInvalidExpression = errors.New("expression is not valid")

// evalOptions next 与 compare 共用的求值参数
type evalOptions struct {
	count       int
	lookahead   int
	legacyMerge bool
	timezone    string
	from        string
}

func (o *evalOptions) flags() []cli.Flag {
	return []cli.Flag{
		cli.IntFlag{
			Name:        "n, count",
			Usage:       "number of run times to list",
			Value:       5,
			Destination: &o.count,
		},
		cli.IntFlag{
			Name:        "lookahead",
			Usage:       "maximum years to search past the current one",
			Value:       core.DefaultLookaheadYears,
			Destination: &o.lookahead,
		},
		cli.BoolFlag{
			Name:        "legacy-merge",
			Usage:       "list later years before the current one",
			Destination: &o.legacyMerge,
		},
		cli.StringFlag{
			Name:        "tz, timezone",
			Usage:       "IANA time zone, defaults to the local zone",
			Destination: &o.timezone,
		},
		cli.StringFlag{
			Name:        "from",
			Usage:       `start from this minute ("2006-01-02 15:04") instead of now`,
			Destination: &o.from,
		},
	}
}

func (o *evalOptions) enumerator() (*core.Enumerator, error) {
	loc := time.Local
	if o.timezone != "" {
		l, err := time.LoadLocation(o.timezone)
		if err != nil {
			return nil, errwrap.Wrap(err, "invalid time zone")
		}
		loc = l
	}

	opts := core.EnumeratorOptions{
		Location:       loc,
		LookaheadYears: o.lookahead,
	}
	if o.legacyMerge {
		opts.MergeOrder = core.MergeLegacy
	}
	if o.from != "" {
		from, err := time.ParseInLocation(core.OccurrenceLayout, o.from, loc)
		if err != nil {
			return nil, errwrap.Wrap(err, "invalid --from")
		}
		opts.Now = func() time.Time { return from }
	}
	return core.NewEnumerator(opts), nil
}

// expressionArg 表达式可以整体加引号，也可以拆成多个参数
func expressionArg(ctx *cli.Context) (string, error) {
	if ctx.NArg() == 0 {
		return "", errors.New("missing cron expression")
	}
	return strings.Join(ctx.Args(), " "), nil
}

func checkCommand(out io.Writer) cli.Command {
	var loose bool
	return cli.Command{
		Name:      "check",
		Usage:     "check whether an expression is in a supported format",
		ArgsUsage: "<expression>",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:        "loose",
				Usage:       "accept any number of fields",
				Destination: &loose,
			},
		},
		Action: func(ctx *cli.Context) error {
			expr, err := expressionArg(ctx)
			if err != nil {
				return err
			}
			if !core.Check(expr, !loose) {
				fmt.Fprintln(out, "invalid")
				return errInvalidExpression
			}
			fmt.Fprintln(out, "valid")
			return nil
		},
	}
}

func nextCommand(out io.Writer) cli.Command {
	opts := &evalOptions{}
	var asJSON bool
	return cli.Command{
		Name:      "next",
		Aliases:   []string{"n"},
		Usage:     "list upcoming run times",
		ArgsUsage: "<expression>",
		Flags: append(opts.flags(), cli.BoolFlag{
			Name:        "json",
			Usage:       "print a JSON array",
			Destination: &asJSON,
		}),
		UseShortOptionHandling: true,
		Action: func(ctx *cli.Context) error {
			expr, err := expressionArg(ctx)
			if err != nil {
				return err
			}
			enumerator, err := opts.enumerator()
			if err != nil {
				return err
			}
			occurrences, err := enumerator.FormatToDate(expr, opts.count)
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(occurrences)
			}
			for _, o := range occurrences {
				fmt.Fprintln(out, o)
			}
			return nil
		},
	}
}

func fieldCommand(out io.Writer) cli.Command {
	var name string
	var lo, hi int
	return cli.Command{
		Name:      "field",
		Usage:     "expand a single field into its values",
		ArgsUsage: "<text>",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:        "field, f",
				Usage:       "minute, hour, day-of-month, month or day-of-week",
				Destination: &name,
			},
			cli.IntFlag{Name: "min", Usage: "lower bound when --field is not given", Destination: &lo},
			cli.IntFlag{Name: "max", Usage: "upper bound when --field is not given", Destination: &hi},
		},
		Action: func(ctx *cli.Context) error {
			text := ctx.Args().First()
			if text == "" {
				return errors.New("missing field text")
			}

			switch {
			case name != "":
				f, err := core.ParseFieldName(name)
				if err != nil {
					return err
				}
				b := f.Bounds()
				lo, hi = b.Min, b.Max
			case !ctx.IsSet("min") || !ctx.IsSet("max"):
				return errors.New("either --field or both --min and --max are required")
			}

			values, err := core.ParseField(text, lo, hi)
			if err != nil {
				return err
			}
			parts := make([]string, len(values))
			for i, v := range values {
				parts[i] = fmt.Sprint(v)
			}
			fmt.Fprintln(out, strings.Join(parts, " "))
			return nil
		},
	}
}

func compareCommand(out io.Writer) cli.Command {
	opts := &evalOptions{}
	return cli.Command{
		Name:      "compare",
		Usage:     "compare run times with conventional cron semantics",
		ArgsUsage: "<expression>",
		Flags:     opts.flags(),
		Action: func(ctx *cli.Context) error {
			expr, err := expressionArg(ctx)
			if err != nil {
				return err
			}
			enumerator, err := opts.enumerator()
			if err != nil {
				return err
			}
			cmp, err := enumerator.Compare(expr, opts.count)
			if err != nil {
				return err
			}
			printComparison(out, cmp)
			return nil
		},
	}
}

func printComparison(out io.Writer, cmp *core.Comparison) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tcronplan\tconventional\t")
	rows := max(len(cmp.Occurrences), len(cmp.Conventional))
	for i := 0; i < rows; i++ {
		ours, theirs := "-", "-"
		if i < len(cmp.Occurrences) {
			ours = cmp.Occurrences[i].Format(core.OccurrenceLayout)
		}
		if i < len(cmp.Conventional) {
			theirs = cmp.Conventional[i].Format(core.OccurrenceLayout)
		}
		marker := ""
		if ours != theirs {
			marker = "*"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, ours, theirs, marker)
	}
	w.Flush()

	switch {
	case cmp.ConventionalError != "":
		fmt.Fprintf(out, "conventional parser rejected the expression: %s\n", cmp.ConventionalError)
	case cmp.Agree:
		fmt.Fprintln(out, "schedules agree")
	default:
		fmt.Fprintf(out, "schedules diverge at #%d\n", cmp.FirstDivergence+1)
	}
}

func weekdaysCommand(out io.Writer) cli.Command {
	return cli.Command{
		Name:  "weekdays",
		Usage: "print the day-of-week numbering",
		Action: func(ctx *cli.Context) error {
			for i, name := range core.Weekdays() {
				fmt.Fprintf(out, "%d %s\n", i, name)
			}
			return nil
		},
	}
}
