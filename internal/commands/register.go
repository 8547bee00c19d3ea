package commands

import (
	"fmt"

	"github.com/Azure/azure-ai-cli-sub003/internal/dispatch"
)

// Register loads the embedded catalog and adds every command root, plus
// help and config, to d.
func Register(d *dispatch.Dispatcher) error {
	catalog, err := LoadCatalog()
	if err != nil {
		return err
	}
	return RegisterCatalog(d, catalog)
}

// RegisterCatalog adds the roots of catalog, plus help and config, to d.
func RegisterCatalog(d *dispatch.Dispatcher, catalog *Catalog) error {
	routes, err := catalog.Routes(d.Files())
	if err != nil {
		return fmt.Errorf("compile catalog: %w", err)
	}
	routes = append(routes, HelpRoute("help"), HelpRoute("--help"), ConfigRoute())
	return d.Register(routes...)
}
