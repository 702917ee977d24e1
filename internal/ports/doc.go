// Package ports defines the interfaces (ports) that connect the application
// layer to infrastructure adapters.
//
// Ports are the boundaries between the application core and the outside
// world. They define what the pipeline needs from external systems without
// specifying how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [Transport]: An open byte-stream connection (serial port)
//   - [TransportOpener]: Opens a Transport with fixed framing parameters
//   - [PortDetector]: Finds the first available serial endpoint
//   - [Sink]: Asynchronous publish target (Kafka producer)
//   - [StatusRepository]: Persists pipeline counters for operators
//
// # Usage
//
// The application layer (internal/app) depends only on these interfaces.
// Infrastructure adapters (internal/adapters) implement them with
// go.bug.st/serial, franz-go and the file system.
package ports
