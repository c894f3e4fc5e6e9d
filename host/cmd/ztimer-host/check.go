package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"ztimer/board"
	"ztimer/board/config"
	"ztimer/convert"
)

func init() {
	checkCommand := &cobra.Command{
		Use:   "check",
		Short: "Validate a board configuration and print its clock tree",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return check(os.Stdout)
		},
	}
	RootCommand.AddCommand(checkCommand)
}

func check(out io.Writer) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	reg := board.NewRegistry()
	b, err := config.Build(cfg, reg, log)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Board %s: %d clocks\n", b.Name, reg.Len())
	treeTable(out, cfg, b).Render()
	return nil
}

func treeTable(out io.Writer, cfg *config.Config, b *config.Board) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"Clock", "Source", "Frequency", "Max", "Lower", "Conversion", "On demand"})
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, cc := range cfg.Clocks {
		clock := b.Registry.MustClock(cc.Name)

		conversion := ""
		if c, ok := b.Converted[cc.Name]; ok {
			conversion = strategyName(c.Converter())
		}
		table.Append([]string{
			cc.Name,
			cc.Source,
			strconv.FormatUint(uint64(cc.Frequency), 10) + " Hz",
			fmt.Sprintf("%#x", clock.MaxValue()),
			cc.Lower,
			conversion,
			strconv.FormatBool(cc.OnDemand),
		})
	}
	return table
}

func strategyName(conv convert.Converter) string {
	switch conv.(type) {
	case *convert.Frac:
		return string(convert.StrategyFrac)
	case *convert.Shift:
		return string(convert.StrategyShift)
	case *convert.MulDiv:
		return string(convert.StrategyMulDiv)
	}
	return fmt.Sprintf("%T", conv)
}
