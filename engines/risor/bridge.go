package risor

import (
	"context"
	"fmt"

	"github.com/risor-io/risor/object"

	"github.com/robbyt/go-scripthost/host"
)

// moduleName is the namespace the native functions are registered under in
// the guest global scope.
const moduleName = "mp"

// convertNode materializes a host tagged value as a Risor object, recursing
// depth-first in source order. Risor maps are hash-backed and do not keep
// the host's insertion order; keys stay unique per the host contract.
func convertNode(ctx context.Context, n host.Node) object.Object {
	switch n.Format {
	case host.FormatNone:
		return object.Nil
	case host.FormatString:
		return object.NewString(n.Value.(string))
	case host.FormatFlag:
		return object.NewBool(n.Truth())
	case host.FormatInt64:
		return object.NewInt(n.Value.(int64))
	case host.FormatDouble:
		return object.NewFloat(n.Value.(float64))
	case host.FormatNodeArray:
		items := n.Value.([]host.Node)
		elems := make([]object.Object, 0, len(items))
		for _, item := range items {
			elems = append(elems, convertNode(ctx, item))
		}
		return object.NewList(elems)
	case host.FormatNodeMap:
		pairs := n.Value.([]host.Pair)
		m := make(map[string]object.Object, len(pairs))
		for _, p := range pairs {
			m[p.Key] = convertNode(ctx, p.Value)
		}
		return object.NewMap(m)
	default:
		// not fatal: the unknown value becomes nil, siblings are unaffected
		sc := scriptContextFrom(ctx)
		sc.Logger.Error(fmt.Sprintf("node mapping failed (format: %d)", int(n.Format)))
		return object.Nil
	}
}

// newModule builds the native module guest code reaches host capabilities
// through.
func newModule() *object.Module {
	return object.NewBuiltinsModule(moduleName, map[string]object.Object{
		"log":           object.NewBuiltin("mp.log", logFn),
		"property_list": object.NewBuiltin("mp.property_list", propertyListFn),
		"get_property":  object.NewBuiltin("mp.get_property", getPropertyFn),
	})
}

func logFn(ctx context.Context, args ...object.Object) object.Object {
	if len(args) != 1 {
		return object.NewArgsError("mp.log", 1, len(args))
	}
	msg, errObj := object.AsString(args[0])
	if errObj != nil {
		return errObj
	}

	// the message goes through verbatim; it is never a format string
	scriptContextFrom(ctx).Logger.Error(msg)
	return object.Nil
}

func propertyListFn(ctx context.Context, args ...object.Object) object.Object {
	if len(args) != 0 {
		return object.NewArgsError("mp.property_list", 0, len(args))
	}

	sc := scriptContextFrom(ctx)
	names := sc.Client.Properties().Names()
	elems := make([]object.Object, 0, len(names))
	for _, name := range names {
		elems = append(elems, object.NewString(name))
	}
	return object.NewList(elems)
}

func getPropertyFn(ctx context.Context, args ...object.Object) object.Object {
	if len(args) != 1 {
		return object.NewArgsError("mp.get_property", 1, len(args))
	}
	name, errObj := object.AsString(args[0])
	if errObj != nil {
		return errObj
	}

	sc := scriptContextFrom(ctx)
	node, err := sc.Client.Properties().Get(name)
	if err != nil {
		sc.Logger.Error(fmt.Sprintf("get_property(%q) failed: %s", name, host.Reason(err)))
		return object.Nil
	}
	return convertNode(ctx, node)
}
