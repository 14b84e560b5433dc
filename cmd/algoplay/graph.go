package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/GiGurra/boa/pkg/boa"
	"github.com/gopxl/beep/v2"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cwbudde/algo-player/dsp/graph"
	"github.com/cwbudde/algo-player/internal/config"
	"github.com/cwbudde/algo-player/internal/output"
	"github.com/cwbudde/algo-player/player"
)

type graphParams struct {
	Config string `short:"c" optional:"true" help:"Configuration file whose effects and EQ are used."`
}

func graphCmd() *cobra.Command {
	return boa.CmdT[graphParams]{
		Use:         "graph",
		Short:       "Print the signal graph with its parameters and processing order",
		ParamEnrich: paramEnricher(),
		RunFunc: func(params *graphParams, cmd *cobra.Command, args []string) {
			if err := runGraph(context.Background(), params, os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "algoplay: %v\n", err)
				os.Exit(1)
			}
		},
	}.ToCobra()
}

func runGraph(ctx context.Context, params *graphParams, w io.Writer) error {
	cfg, err := config.Load(params.Config)
	if err != nil {
		return err
	}
	pc := cfg.PlayerConfig()

	ac := output.NewNull(cfg.Audio.SampleRate, cfg.Audio.Buffer, zerolog.Nop())
	defer ac.Close()

	b := player.NewBuilder(pc.Builder, zerolog.Nop())
	h, err := b.Build(ctx, ac, beep.Silence(-1), pc.Effects, player.DefaultEQBands(pc.EQGains...))
	if err != nil {
		return err
	}
	renderGraph(w, h.Graph.Describe())
	return nil
}

func renderGraph(w io.Writer, d graph.Description) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"NODE", "KIND", "PARAMS"})
	for _, n := range d.Nodes {
		id := n.ID
		if id == d.Output {
			id = text.FgGreen.Sprint(id)
		}
		t.AppendRow(table.Row{id, n.Kind, formatParams(n.Params)})
	}
	t.Render()

	c := table.NewWriter()
	c.SetOutputMirror(w)
	c.SetStyle(table.StyleLight)
	c.AppendHeader(table.Row{"FROM", "TO", ""})
	for _, conn := range d.Connections {
		mark := ""
		if conn.Feedback {
			mark = text.FgYellow.Sprint("feedback")
		}
		c.AppendRow(table.Row{conn.From, conn.To, mark})
	}
	c.Render()

	fmt.Fprintf(w, "order: %s\n", strings.Join(d.Order, " -> "))
}

func formatParams(params map[string]float64) string {
	if len(params) == 0 {
		return ""
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	slices.Sort(names)
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%.4g", name, params[name])
	}
	return strings.Join(parts, " ")
}
