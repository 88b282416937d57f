package extism

import (
	"context"
	"encoding/json"
	"fmt"

	extismSDK "github.com/extism/go-sdk"

	"github.com/robbyt/go-scripthost/host"
)

// hostFunctions builds the native functions exported to plugins under the
// default extism host namespace. All three use the ptr-in/ptr-out calling
// convention: string arguments and JSON results travel through plugin
// memory.
func hostFunctions() []extismSDK.HostFunction {
	return []extismSDK.HostFunction{
		extismSDK.NewHostFunctionWithStack(
			"log",
			logFn,
			[]extismSDK.ValueType{extismSDK.ValueTypePTR},
			[]extismSDK.ValueType{},
		),
		extismSDK.NewHostFunctionWithStack(
			"property_list",
			propertyListFn,
			[]extismSDK.ValueType{},
			[]extismSDK.ValueType{extismSDK.ValueTypePTR},
		),
		extismSDK.NewHostFunctionWithStack(
			"get_property",
			getPropertyFn,
			[]extismSDK.ValueType{extismSDK.ValueTypePTR},
			[]extismSDK.ValueType{extismSDK.ValueTypePTR},
		),
	}
}

func logFn(ctx context.Context, p *extismSDK.CurrentPlugin, stack []uint64) {
	sc := scriptContextFrom(ctx)
	msg, err := p.ReadString(stack[0])
	if err != nil {
		sc.Logger.Error(fmt.Sprintf("log: unable to read plugin memory: %s", err))
		return
	}

	// the message goes through verbatim; it is never a format string
	sc.Logger.Error(msg)
}

func propertyListFn(ctx context.Context, p *extismSDK.CurrentPlugin, stack []uint64) {
	sc := scriptContextFrom(ctx)
	names := sc.Client.Properties().Names()

	out, err := json.Marshal(names)
	if err != nil {
		sc.Logger.Error(fmt.Sprintf("property_list: %s", err))
		out = []byte("[]")
	}
	writeResult(sc, p, stack, out)
}

func getPropertyFn(ctx context.Context, p *extismSDK.CurrentPlugin, stack []uint64) {
	sc := scriptContextFrom(ctx)
	name, err := p.ReadString(stack[0])
	if err != nil {
		sc.Logger.Error(fmt.Sprintf("get_property: unable to read plugin memory: %s", err))
		writeResult(sc, p, stack, []byte("null"))
		return
	}

	node, err := sc.Client.Properties().Get(name)
	if err != nil {
		sc.Logger.Error(fmt.Sprintf("get_property(%q) failed: %s", name, host.Reason(err)))
		writeResult(sc, p, stack, []byte("null"))
		return
	}
	writeResult(sc, p, stack, convertNodeJSON(sc, node))
}

// writeResult copies a JSON payload into plugin memory and places its
// offset in the return slot. The plugin owns the allocation from here; its
// memory is released with the instance during teardown.
func writeResult(sc *ScriptContext, p *extismSDK.CurrentPlugin, stack []uint64, out []byte) {
	offset, err := p.WriteBytes(out)
	if err != nil {
		sc.Logger.Error(fmt.Sprintf("unable to write plugin memory: %s", err))
		stack[0] = 0
		return
	}
	stack[0] = offset
}
