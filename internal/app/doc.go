// Package app provides the application context for ruche.
//
// This package wires the shared services once at startup using the
// functional options pattern, enabling easy testing through dependency
// injection.
//
// # App Context
//
// The App struct holds core dependencies:
//
//	type App struct {
//	    Config   *config.Config          // Loaded configuration
//	    Registry registry.Registry       // Node records
//	    Runtime  runtime.Runtime         // Container runtime
//	    FS       system.FileSystem       // Node directories and audit logs
//	    Lookup   neighborhood.Lookup     // Target neighborhood source
//	    Guard    *deletion.Guard         // Deletion tickets
//	    Audit    *audit.Logger           // Per-node event trail
//	    Nodes    *lifecycle.Orchestrator // Node operations
//	}
//
// # Creating an App
//
//	// Production usage
//	a, err := app.New(app.WithConfig(cfg))
//
//	// Testing with custom dependencies
//	a, err := app.New(
//	    app.WithConfig(cfg),
//	    app.WithRegistry(registry.NewMemory()),
//	    app.WithRuntime(runtime.NewMockRuntime()),
//	    app.WithFileSystem(system.NewMockFS()),
//	)
//
// Anything not supplied is built from the configuration: the registry
// backend from [registry], the runtime from [runtime] and the neighborhood
// lookup from [neighborhood].
package app
