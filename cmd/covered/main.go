// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Command covered simulates coverage databases against stimulus files,
// merges and reports them.
//
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/db47h/covered"
	"github.com/db47h/covered/internal/config"
	"github.com/k0kubun/pp/v3"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const usage = `usage:
	covered init [covered.yaml]
	covered score [-c config] <design.cdd> <stimulus> <out.cdd>
	covered merge [-c config] <out.cdd> <in.cdd>...
	covered report <db.cdd>
	covered dump <db.cdd>
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "init":
		err = runInit(args)
	case "score":
		err = runScore(args)
	case "merge":
		err = runMerge(args)
	case "report":
		err = runReport(args)
	case "dump":
		err = runDump(args)
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		logrus.Fatalf("%s: %v", cmd, err)
	}
}

// setup parses the -c flag and loads the configuration.
func setup(name string, args []string, nargs int) (*config.Config, *logrus.Logger, []string, error) {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	cfgFile := fs.String("c", "", "configuration file")
	fs.Parse(args)
	if fs.NArg() < nargs {
		return nil, nil, nil, errors.Errorf("expected at least %d arguments\n%s", nargs, usage)
	}
	var (
		cfg *config.Config
		err error
	)
	if *cfgFile != "" {
		cfg, err = config.LoadFile(*cfgFile)
	} else {
		cfg, err = config.Load(filepath.Dir(fs.Arg(0)))
	}
	if err != nil {
		return nil, nil, nil, err
	}
	l, err := cfg.Logger()
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, l, fs.Args(), nil
}

func runInit(args []string) error {
	path := "covered.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return errors.Errorf("%s already exists", path)
	}
	if err := config.DefaultConfig().Save(path); err != nil {
		return err
	}
	logrus.Infof("wrote %s", path)
	return nil
}

func readDB(path string) (*covered.Design, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	defer f.Close()
	d, err := covered.Read(f)
	return d, errors.Wrapf(err, "database %s", path)
}

func writeDB(path string, d *covered.Design, valueOnly bool) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create database")
	}
	if err = d.Write(f, valueOnly); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "write database")
}

func runScore(args []string) error {
	cfg, l, args, err := setup("score", args, 3)
	if err != nil {
		return err
	}
	d, err := readDB(args[0])
	if err != nil {
		return err
	}
	f, err := os.Open(args[1])
	if err != nil {
		return errors.Wrap(err, "open stimulus")
	}
	st, err := covered.ReadStimulus(f)
	f.Close()
	if err != nil {
		return errors.Wrapf(err, "stimulus %s", args[1])
	}
	sim, err := covered.NewSimulator(d,
		covered.WithLogger(l),
		covered.WithMaxIterations(cfg.Simulation.MaxIterations))
	if err != nil {
		return err
	}
	if err = sim.Run(st); err != nil {
		return err
	}
	l.WithFields(logrus.Fields{"steps": len(st.Steps), "time": sim.Time()}).Info("simulation done")
	return writeDB(args[2], d, cfg.Database.ValueOnly)
}

func runMerge(args []string) error {
	cfg, l, args, err := setup("merge", args, 2)
	if err != nil {
		return err
	}
	var base *covered.Design
	for _, p := range args[1:] {
		d, err := readDB(p)
		if err != nil {
			return err
		}
		if base == nil {
			base = d
			continue
		}
		err = base.Merge(d)
		if errors.Cause(err) == covered.ErrDesignMismatch && !cfg.Database.StrictMerge {
			l.WithField("file", p).Warn("design mismatch, skipped")
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "merge %s", p)
		}
	}
	return writeDB(args[0], base, cfg.Database.ValueOnly)
}

func percent(hit, total int) string {
	switch {
	case total < 0:
		return "unknown"
	case total == 0:
		return "n/a"
	}
	return fmt.Sprintf("%5.1f%%", float64(hit)*100/float64(total))
}

func runReport(args []string) error {
	if len(args) < 1 {
		return errors.New(usage)
	}
	d, err := readDB(args[0])
	if err != nil {
		return err
	}
	row := func(name string, s covered.Summary) {
		fmt.Printf("%-16s lines %4d/%-4d %s  toggle01 %4d/%-4d %s  toggle10 %4d/%-4d %s  comb %4d/%-4d %s  states %d/%d %s  arcs %d/%d %s\n",
			name,
			s.LinesHit, s.Lines, percent(s.LinesHit, s.Lines),
			s.Toggle01, s.Bits, percent(s.Toggle01, s.Bits),
			s.Toggle10, s.Bits, percent(s.Toggle10, s.Bits),
			s.CombsHit, s.Combs, percent(s.CombsHit, s.Combs),
			s.StatesHit, s.States, percent(s.StatesHit, s.States),
			s.ArcsHit, s.Arcs, percent(s.ArcsHit, s.Arcs))
	}
	for _, m := range d.Modules {
		row(m.Name, m.Summary())
	}
	row("total", d.Summary())
	return nil
}

func runDump(args []string) error {
	if len(args) < 1 {
		return errors.New(usage)
	}
	d, err := readDB(args[0])
	if err != nil {
		return err
	}
	for _, m := range d.Modules {
		pp.Printf("module %s (%s)\n", m.Name, m.File)
		for _, s := range m.Signals {
			pp.Printf("  %s = %s\n", s.Name, s.Value.String())
		}
		for _, st := range m.Stmts {
			pp.Printf("  %v executed=%v\n", st, st.Executed())
		}
		for _, f := range m.FSMs {
			pp.Println(f.Arcs.Entries())
		}
		pp.Println(m.Summary())
	}
	return nil
}
