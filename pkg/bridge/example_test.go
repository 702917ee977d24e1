package bridge_test

import (
	"context"
	"fmt"

	"github.com/bft-labs/framebridge/pkg/bridge"
)

// ExampleNew demonstrates how to embed the bridge in an application.
func ExampleNew() {
	cfg := bridge.Config{
		Port:             "/dev/ttyUSB0",
		BaudRate:         9600,
		BootstrapServers: "localhost:9092",
		Topic:            "modbus-frames",
	}

	b, err := bridge.New(cfg)
	if err != nil {
		fmt.Printf("failed to create bridge: %v\n", err)
		return
	}

	fmt.Println("Status:", b.Status())

	// Output: Status: stopped
}

// Example_missingTopic shows the validation of required Kafka settings.
func Example_missingTopic() {
	_, err := bridge.New(bridge.Config{BootstrapServers: "localhost:9092"})
	fmt.Println(err)

	// Output: framebridge: missing required configuration: topic.name
}

// Example_withEventHandler demonstrates how to receive bridge events.
func Example_withEventHandler() {
	cfg := bridge.Config{
		Simulate:         true,
		BootstrapServers: "localhost:9092",
		Topic:            "modbus-frames",
	}

	b, err := bridge.New(cfg, bridge.WithEventHandler(&myEventHandler{}))
	if err != nil {
		fmt.Printf("failed to create bridge: %v\n", err)
		return
	}

	_ = b.Start(context.Background())
	defer b.Stop()
}

// myEventHandler implements bridge.EventHandler.
type myEventHandler struct {
	bridge.BaseEventHandler // Embed for no-op defaults
}

func (h *myEventHandler) OnStateChange(event bridge.StateChangeEvent) {
	fmt.Printf("State changed: %s -> %s (reason: %s)\n",
		event.Previous, event.Current, event.Reason)
}

func (h *myEventHandler) OnFrameRejected(event bridge.FrameRejectedEvent) {
	fmt.Printf("Dropped % X (%s)\n", event.Frame, event.Reason)
}

func (h *myEventHandler) OnPublishSuccess(event bridge.PublishSuccessEvent) {
	fmt.Printf("Delivered %d bytes to %s[%d]@%d\n",
		event.Size, event.Placement.Topic, event.Placement.Partition, event.Placement.Offset)
}
