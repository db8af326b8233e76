package commands

import (
	"fmt"
	"path/filepath"

	"git.home.luguber.info/inful/guidebuilder/internal/config"
)

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force  bool   `help:"Overwrite an existing configuration file"`
	Output string `short:"o" help:"Directory to place the configuration file in"`
}

func (i *InitCmd) Run(_ *Global, root *CLI) error {
	configPath := root.Config
	if i.Output != "" {
		configPath = filepath.Join(i.Output, filepath.Base(root.Config))
	}

	if err := config.Init(configPath, i.Force); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", configPath)
	fmt.Println("Edit it, add pages under content/, then run: guidebuilder build")
	return nil
}
