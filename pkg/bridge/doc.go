// Package bridge provides an embeddable serial to Kafka frame bridge.
//
// The bridge reads raw chunks from a serial port, treats each read as one
// MODBUS RTU style frame, validates its trailing CRC16-MODBUS checksum and
// publishes valid frames verbatim to a Kafka topic. Invalid frames are
// logged and dropped. It can be used through the framebridge CLI or
// embedded as a library.
//
// # Basic Usage
//
//	cfg := bridge.Config{
//	    Port:             "/dev/ttyUSB0",
//	    BaudRate:         9600,
//	    BootstrapServers: "localhost:9092",
//	    Topic:            "modbus-frames",
//	}
//
//	b, err := bridge.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := b.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
//	// ... run until shutdown signal ...
//
//	if err := b.Stop(); err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
//
// Leave Port empty to use the first serial port the platform reports.
// Set Simulate to run against a built-in transport that emits a valid
// frame every SimulateInterval.
//
// # Event Handling
//
// Implement [EventHandler] (embedding [BaseEventHandler] for no-op
// defaults) and pass it via [WithEventHandler] to observe state changes,
// rejected frames and delivery outcomes. Delivery events run on the Kafka
// client's goroutines and must return quickly.
//
// # Dependency Injection
//
// [WithSink], [WithTransportOpener] and [WithPortDetector] replace the
// Kafka producer, the serial driver and port enumeration respectively.
//
// # Lifecycle States
//
// A Bridge is in one of [StateStopped], [StateStarting], [StateRunning],
// [StateStopping] or [StateCrashed]. A read fault crashes the bridge; call
// [Bridge.Stop] to release it, or [Bridge.Start] to try again.
package bridge
