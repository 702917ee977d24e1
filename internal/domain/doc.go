// Package domain contains the core domain entities and value objects for framebridge.
//
// This package represents the innermost layer of the Clean Architecture. It has
// no dependencies on infrastructure concerns (serial ports, Kafka, logging) and
// contains only pure business logic.
//
// # Entities
//
//   - [Frame]: One chunk of bytes produced by a single transport read
//   - [Placement]: Where the sink stored a delivered frame (topic, partition, offset)
//   - [Stats]: Counters describing pipeline progress since start
//
// # Validation
//
// [IsValidFrame] gates forwarding. A frame is valid when it carries at least
// one payload byte followed by a CRC16-MODBUS checksum, low byte first, that
// matches [ComputeCRC16] over the payload.
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Testable without mocks or external systems
package domain
