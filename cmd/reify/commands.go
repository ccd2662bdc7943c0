package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/chazu/reify/dist"
	"github.com/chazu/reify/manifest"
	"github.com/chazu/reify/reify"
	"github.com/chazu/reify/store"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"
)

// Globals are flags shared by every command.
type Globals struct {
	Verbose int    `short:"v" type:"counter" help:"Increase log verbosity (repeatable)."`
	Dir     string `short:"C" default:"." help:"Directory to search upward from for reify.toml." type:"path"`

	out   io.Writer `kong:"-"`
	color *bool     `kong:"-"`
}

func (g *Globals) stdout() io.Writer {
	if g.out == nil {
		return os.Stdout
	}
	return g.out
}

func (g *Globals) useColor() bool {
	if g.color != nil {
		return *g.color
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func (g *Globals) manifest() (*manifest.Manifest, error) {
	m, err := manifest.FindAndLoad(g.Dir)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w above %s", manifest.ErrNoManifest, g.Dir)
	}
	return m, nil
}

func (g *Globals) universe() (*manifest.Universe, error) {
	m, err := g.manifest()
	if err != nil {
		return nil, err
	}
	return manifest.Build(m)
}

func (g *Globals) openStore() (*store.Store, *manifest.Manifest, error) {
	m, err := g.manifest()
	if err != nil {
		return nil, nil, err
	}
	s, err := store.Open(m.StorePath())
	if err != nil {
		return nil, nil, err
	}
	return s, m, nil
}

// ---------------------------------------------------------------------------
// check
// ---------------------------------------------------------------------------

// ErrChecksFailed is returned by check when any declared check fails.
var ErrChecksFailed = errors.New("checks failed")

type CheckCmd struct{}

func (c *CheckCmd) Run(g *Globals) error {
	u, err := g.universe()
	if err != nil {
		return err
	}

	w := g.stdout()
	failed := 0
	for _, r := range u.RunChecks() {
		verb := "is"
		if !r.Check.Expect {
			verb = "is not"
		}
		switch {
		case r.Err != nil:
			failed++
			fmt.Fprintf(w, "%s %s %s %s: %v\n", paint(g, red, "ERROR"), r.Check.Value, verb, r.Check.Type, r.Err)
		case r.Passed():
			fmt.Fprintf(w, "%s %s %s %s\n", paint(g, green, "PASS "), r.Check.Value, verb, r.Check.Type)
		default:
			failed++
			fmt.Fprintf(w, "%s %s %s %s\n", paint(g, red, "FAIL "), r.Check.Value, verb, r.Check.Type)
		}
	}

	hits, misses := u.Synth.Sites().Stats()
	fmt.Fprintf(w, "%d checks, %d failed, %d descriptors (%d site builds, %d cache hits)\n",
		len(u.Manifest.Checks), failed, u.Registry.Len(), misses, hits)
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrChecksFailed, failed, len(u.Manifest.Checks))
	}
	return nil
}

const (
	red   = "\033[31m"
	green = "\033[32m"
	reset = "\033[0m"
)

func paint(g *Globals, color, s string) string {
	if !g.useColor() {
		return s
	}
	return color + s + reset
}

// ---------------------------------------------------------------------------
// dump
// ---------------------------------------------------------------------------

type DumpCmd struct {
	Format string `short:"f" enum:"text,json,yaml" default:"text" help:"Output format (text, json, yaml)."`
}

func (c *DumpCmd) Run(g *Globals) error {
	u, err := g.universe()
	if err != nil {
		return err
	}
	return writeDescriptors(g.stdout(), c.Format, u.Registry)
}

// descriptorView is the dump form of one descriptor.
type descriptorView struct {
	ID     uint32 `json:"id" yaml:"id"`
	Type   string `json:"type" yaml:"type"`
	Parent string `json:"parent,omitempty" yaml:"parent,omitempty"`
}

func viewsOf(reg *reify.Registry) []descriptorView {
	all := reg.All()
	views := make([]descriptorView, len(all))
	for i, d := range all {
		views[i] = descriptorView{ID: uint32(d.ID()), Type: d.String()}
		if p := d.Parent(); p != nil {
			views[i].Parent = p.String()
		}
	}
	return views
}

func writeDescriptors(w io.Writer, format string, reg *reify.Registry) error {
	views := viewsOf(reg)
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(views)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(views); err != nil {
			return err
		}
		return enc.Close()
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tPARENT")
	for _, v := range views {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", v.ID, v.Type, v.Parent)
	}
	return tw.Flush()
}

// ---------------------------------------------------------------------------
// save / load / list / delete
// ---------------------------------------------------------------------------

type SaveCmd struct {
	Name string `arg:"" optional:"" help:"Snapshot name (default from [store] snapshot)."`
}

func (c *SaveCmd) Run(g *Globals) error {
	u, err := g.universe()
	if err != nil {
		return err
	}
	s, err := store.Open(u.Manifest.StorePath())
	if err != nil {
		return err
	}
	defer s.Close()

	name := c.Name
	if name == "" {
		name = u.Manifest.Store.Snapshot
	}
	snap := dist.Export(u.Registry)
	if err := s.Save(context.Background(), name, snap); err != nil {
		return err
	}
	fmt.Fprintf(g.stdout(), "saved %s: %s\n", name, snap.Summary())
	return nil
}

type LoadCmd struct {
	Name   string `arg:"" optional:"" help:"Snapshot name (default from [store] snapshot)."`
	Format string `short:"f" enum:"text,json,yaml" default:"text" help:"Output format (text, json, yaml)."`
}

func (c *LoadCmd) Run(g *Globals) error {
	u, err := g.universe()
	if err != nil {
		return err
	}
	s, err := store.Open(u.Manifest.StorePath())
	if err != nil {
		return err
	}
	defer s.Close()

	name := c.Name
	if name == "" {
		name = u.Manifest.Store.Snapshot
	}
	snap, err := s.Load(context.Background(), name)
	if err != nil {
		return err
	}
	// Import against the manifest's classes so their predicates apply.
	reg, err := dist.Import(snap, u.Classes)
	if err != nil {
		return err
	}
	if c.Format == "text" {
		fmt.Fprintf(g.stdout(), "loaded %s: %s\n", name, snap.Summary())
	}
	return writeDescriptors(g.stdout(), c.Format, reg)
}

type ListCmd struct{}

func (c *ListCmd) Run(g *Globals) error {
	s, _, err := g.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	entries, err := s.List(context.Background())
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(g.stdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSESSION\tCREATED\tBYTES")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", e.Name, e.Session, e.Created.Format(time.RFC3339), e.Size)
	}
	return tw.Flush()
}

type DeleteCmd struct {
	Name string `arg:"" help:"Snapshot name."`
}

func (c *DeleteCmd) Run(g *Globals) error {
	s, _, err := g.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Delete(context.Background(), c.Name); err != nil {
		return err
	}
	fmt.Fprintf(g.stdout(), "deleted %s\n", c.Name)
	return nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	fmt.Fprintln(g.stdout(), Version())
	return nil
}
