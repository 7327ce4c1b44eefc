// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	"github.com/luxfi/memo"
	"github.com/luxfi/memo/config"
	"github.com/luxfi/memo/key"
	"github.com/luxfi/memo/metercacher"
)

func ReplayCommandBuilder() *cli.Command {
	return &cli.Command{
		Name:      "replay",
		Usage:     "replay a script of calls against a memoized fetcher",
		UsageText: `memo replay [options] SCRIPT`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "cache config file",
			},
			&cli.IntFlag{
				Name:  "maxsize",
				Usage: "entry limit, 0 for unbounded",
				Value: memo.DefaultMaxSize,
			},
			&cli.DurationFlag{
				Name:  "expire",
				Usage: "time to live, 0 for never",
				Value: memo.DefaultExpire,
			},
			&cli.DurationFlag{
				Name:  "latency",
				Usage: "simulated fetch latency",
				Value: 50 * time.Millisecond,
			},
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "print collected metrics after the replay",
			},
		},
		Action: ReplayCommandAction,
	}
}

func ReplayCommandAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 1 {
		return errors.New("exactly one SCRIPT is required")
	}

	script, err := LoadScript(cmd.Args().First())
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	m := memo.NewManager()
	if cfg.Source != "" {
		m.Logger().WithField("file", cfg.Source).Debug("using config file")
	}
	fetch, err := memo.Wrap(m, script.Name, simulatedFetch(cmd.Duration("latency")), cfg.Options(script.Name)...)
	if err != nil {
		return err
	}
	cfg.Apply(m)
	if cmd.IsSet("maxsize") {
		fetch.SetMaxSize(int(cmd.Int("maxsize")))
	}
	if cmd.IsSet("expire") {
		fetch.SetExpire(cmd.Duration("expire"))
	}

	w := cmd.Root().Writer
	if err := replay(ctx, w, m, fetch, script.Steps); err != nil {
		return err
	}

	printInfos(w, m.Infos())
	if cmd.Bool("metrics") {
		return printMetrics(w, m)
	}
	return nil
}

func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if path == "" && errors.Is(err, config.ErrNotFound) {
		return config.Default(), nil
	}
	return cfg, err
}

// simulatedFetch stands in for an API read: it echoes its arguments after
// the given latency.
func simulatedFetch(latency time.Duration) memo.Loader[map[string]any] {
	return func(ctx context.Context, args memo.Args) (map[string]any, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(latency):
		}
		return map[string]any{
			"args":       args.Positional,
			"kwargs":     args.Keyword,
			"fetched_at": time.Now().UTC().Format(time.RFC3339Nano),
		}, nil
	}
}

func replay(ctx context.Context, w io.Writer, m *memo.Manager, fetch *memo.Func[map[string]any], steps []Step) error {
	for i, step := range steps {
		switch {
		case step.Sleep > 0:
			fmt.Fprintf(w, "%3d sleep %s\n", i, step.Sleep)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(step.Sleep):
			}
		case step.Clear:
			m.ClearAll()
			fmt.Fprintf(w, "%3d clear\n", i)
		case step.Disable:
			m.Disable()
			fmt.Fprintf(w, "%3d disable\n", i)
		case step.Enable:
			m.Enable()
			fmt.Fprintf(w, "%3d enable\n", i)
		}
		if !step.isCall() {
			continue
		}

		before := fetch.Info()
		start := time.Now()
		if _, err := fetch.Call(ctx, step.args()); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		took := time.Since(start)

		k, _ := key.Derive(step.Args, step.Kwargs)
		outcome := classify(before, fetch.Info())
		m.Logger().WithFields(log.Fields{"step": i, "outcome": outcome, "key_hash": key.Digest(k)}).Debug("replayed")
		fmt.Fprintf(w, "%3d %-7s %-40s %s\n", i, outcome, k, took.Round(time.Microsecond))
	}
	return nil
}

func classify(before, after memo.Info) string {
	switch {
	case after.Hits > before.Hits:
		return "hit"
	case after.ExpiredHits > before.ExpiredHits:
		return "expired"
	case after.Misses > before.Misses:
		return "miss"
	default:
		return "bypass"
	}
}

func printInfos(w io.Writer, infos []memo.Info) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FUNC\tENABLED\tMAXSIZE\tEXPIRE\tSIZE\tHITS\tMISSES\tEXPIRED\tEVICTED\tHIT RATE")
	for _, info := range infos {
		fmt.Fprintf(tw, "%s\t%t\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			info.Name,
			info.Enabled,
			humanize.Comma(int64(info.MaxSize)),
			info.Expire,
			humanize.Comma(int64(info.CurrentSize)),
			humanize.Comma(int64(info.Hits)),
			humanize.Comma(int64(info.Misses)),
			humanize.Comma(int64(info.ExpiredHits)),
			humanize.Comma(int64(info.Evictions)),
			hitRate(info),
		)
	}
	_ = tw.Flush()
}

func hitRate(info memo.Info) string {
	total := info.Hits + info.Misses + info.ExpiredHits
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(info.Hits)/float64(total))
}

func printMetrics(w io.Writer, m *memo.Manager) error {
	registry := prometheus.NewRegistry()
	if err := registry.Register(metercacher.New("memo", m)); err != nil {
		return err
	}
	families, err := registry.Gather()
	if err != nil {
		return err
	}

	var lines []string
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			var labels []string
			for _, lp := range metric.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			value := metric.GetGauge().GetValue() + metric.GetCounter().GetValue()
			name := mf.GetName()
			if len(labels) > 0 {
				name += "{" + strings.Join(labels, ",") + "}"
			}
			lines = append(lines, fmt.Sprintf("%s %g", name, value))
		}
	}
	sort.Strings(lines)
	for _, line := range lines {
		fmt.Fprintln(w, line)
	}
	return nil
}
