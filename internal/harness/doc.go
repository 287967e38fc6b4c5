// Package harness runs end-to-end scenarios against a scripted fake
// service. A scenario is a YAML file naming the scripted responses, a
// flow of cache operations, and assertions on the final local state;
// the final state is also snapshotted against a golden file.
package harness
