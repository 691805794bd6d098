// Command sidectl demonstrates the core library end to end: declare
// an event, attach a printf-style tracer callback, fire the event,
// and drive a statedump. It exists to exercise the public API from
// the command line, not as a production tracer.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/efficios/go-side"
)

func main() {
	root := &cobra.Command{
		Use:   "sidectl",
		Short: "Exercise the go-side tracing core from the command line",
	}
	root.AddCommand(fireCmd(), statedumpCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func demoEvent() side.FixedEvent {
	return side.DescribeEvent(
		"sidectl",
		"hello",
		[]side.Field{
			{Name: "message", Type: side.String(side.EncodingUTF8, side.OrderHost)},
			{Name: "count", Type: side.Integer(side.Width32, true, side.OrderHost)},
		},
		nil,
		side.LogInfo,
	)
}

func printfTracer(desc *side.EventDescription, args side.ArgVec, key uint64, priv any) {
	msg := args[0].(side.StringArg).Value
	count := args[1].(side.IntegerArg).Value.Int64()
	fmt.Printf("%s:%s key=%d message=%q count=%d\n", desc.Provider, desc.Name, key, msg, count)
}

func fireCmd() *cobra.Command {
	var message string
	var count int32

	cmd := &cobra.Command{
		Use:   "fire",
		Short: "Declare a demo event, attach a printf tracer, and call it once",
		RunE: func(cmd *cobra.Command, args []string) error {
			event := demoEvent()
			if _, err := side.RegisterEvents(event); err != nil {
				return err
			}
			if err := side.TracerCallbackRegister(event.EventDescription, printfTracer, nil); err != nil {
				return err
			}
			event.Call(side.ArgVec{
				side.ArgString(message),
				side.ArgInt(int64(count)),
			})
			side.Teardown()
			return nil
		},
	}
	cmd.Flags().StringVar(&message, "message", "hello from sidectl", "message field value")
	cmd.Flags().Int32Var(&count, "count", 1, "count field value")
	return cmd
}

func statedumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "statedump",
		Short: "Register a statedump request, declare a state event, and trigger a dump",
		RunE: func(cmd *cobra.Command, args []string) error {
			event := side.DescribeEvent(
				"sidectl",
				"state",
				[]side.Field{{Name: "value", Type: side.Integer(side.Width64, false, side.OrderHost)}},
				nil,
				side.LogInfo,
			)
			if _, err := side.RegisterEvents(event); err != nil {
				return err
			}
			if err := side.TracerCallbackRegister(event.EventDescription, printfStatedumpTracer, nil); err != nil {
				return err
			}

			var current uint64 = 42
			handle := side.RegisterStatedumpRequest("sidectl-state", func(key uint64) {
				if err := event.CallStatedump(side.ArgVec{side.ArgUint(current)}, key); err != nil {
					fmt.Fprintln(os.Stderr, err)
				}
			}, side.ModePollingThread)

			key := side.RequestStatedump()
			handle.Poll()
			side.StatedumpWait(key)

			side.UnregisterStatedumpRequest(handle)
			side.Teardown()
			return nil
		},
	}
	return cmd
}

func printfStatedumpTracer(desc *side.EventDescription, args side.ArgVec, key uint64, priv any) {
	v := args[0].(side.IntegerArg).Value.Uint64()
	fmt.Printf("%s:%s statedump key=%d value=%d\n", desc.Provider, desc.Name, key, v)
}
