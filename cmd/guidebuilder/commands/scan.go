package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"git.home.luguber.info/inful/guidebuilder/internal/config"
	"git.home.luguber.info/inful/guidebuilder/internal/corpus"
	"git.home.luguber.info/inful/guidebuilder/internal/nav"
)

// ScanCmd implements the 'scan' command: resolve and print the navigation
// order without rendering anything.
type ScanCmd struct {
	Root string `arg:"" optional:"" help:"Content root to scan (defaults to the configured content.root)"`
	JSON bool   `help:"Emit the resolved tree as JSON"`
}

func (s *ScanCmd) Run(_ *Global, root *CLI) error {
	cfg, err := loadConfig(root)
	if err != nil {
		// A config file is optional for scan: a bare content directory is
		// enough to resolve ordering.
		if s.Root == "" {
			return err
		}
		cfg = config.Default()
	}
	contentRoot := cfg.Content.Root
	if s.Root != "" {
		contentRoot = s.Root
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	c, err := corpus.Scan(ctx, contentRoot)
	if err != nil {
		return err
	}
	if err := c.LoadAll(ctx); err != nil {
		return err
	}
	tree := nav.BuildTree(c, nav.Options{KeepPrefixes: cfg.Site.KeepPrefixes})

	if s.JSON {
		return printTreeJSON(tree)
	}

	fmt.Printf("%s: %d pages, %d assets\n\n", contentRoot, len(c.Pages), len(c.Assets))
	for _, child := range tree.Root.Children {
		printNode(child, 0)
	}
	return nil
}

func printTreeJSON(tree *nav.Tree) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(tree.Root)
}

func printNode(n *nav.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	marker := ""
	if n.IsStub() {
		marker = " (stub index)"
	}
	fmt.Printf("%s%2d. %-30s %s%s\n", indent, n.Weight, n.Title, n.Route, marker)
	for _, child := range n.Children {
		printNode(child, depth+1)
	}
}
