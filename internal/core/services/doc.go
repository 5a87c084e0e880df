// Package services implements the driving port interfaces.
// Services contain the core pipeline logic and orchestrate
// calls to driven ports (adapters).
//
// Every I/O concern is behind a driven port.
package services
