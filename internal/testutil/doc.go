// Package testutil provides test fixtures and a wired test environment.
//
// # Test Environment
//
// NewTestEnv builds an app.App on top of test doubles: an in-memory
// registry, a mock runtime, a mock filesystem, a static neighborhood
// lookup and a manual clock.
//
//	env := testutil.NewTestEnv(t)
//	env.AddNode(3)
//	info, err := env.App.Nodes.Get(ctx, 3)
//
//	env.App.Nodes.RequestDeletion(ctx, 3)
//	env.Clock.Advance(31 * time.Second)
//	err = env.App.Nodes.ConfirmDeletion(ctx, 3) // ConfirmationRequired
//
// # Fixtures
//
// Fixtures are embedded using go:embed:
//
//	fixtures/valid_config.toml
//	fixtures/valid_config.yaml
//	fixtures/invalid_config.toml
//	fixtures/valid_record.json
//
// Helper functions load and decode them:
//
//	cfg, err := testutil.ValidConfig()
//	cfg, err := testutil.ValidYAMLConfig()
//	cfg, err := testutil.InvalidConfig()
//	rec, err := testutil.ValidRecord()
//
// For custom parsing or testing edge cases:
//
//	data, err := testutil.LoadFixture("valid_config.toml")
package testutil
