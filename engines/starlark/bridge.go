package starlark

import (
	"fmt"

	starlarkLib "go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"

	"github.com/robbyt/go-scripthost/host"
)

// moduleName is the namespace the native functions are registered under in
// the guest global scope.
const moduleName = "mp"

// convertNode materializes a host tagged value as a Starlark value,
// recursing depth-first in source order. The node is borrowed for the call;
// strings are copied by construction and no reference into the node tree
// survives the return.
func convertNode(thread *starlarkLib.Thread, n host.Node) starlarkLib.Value {
	switch n.Format {
	case host.FormatNone:
		return starlarkLib.None
	case host.FormatString:
		return starlarkLib.String(n.Value.(string))
	case host.FormatFlag:
		return starlarkLib.Bool(n.Truth())
	case host.FormatInt64:
		return starlarkLib.MakeInt64(n.Value.(int64))
	case host.FormatDouble:
		return starlarkLib.Float(n.Value.(float64))
	case host.FormatNodeArray:
		items := n.Value.([]host.Node)
		elems := make([]starlarkLib.Value, 0, len(items))
		for _, item := range items {
			elems = append(elems, convertNode(thread, item))
		}
		return starlarkLib.NewList(elems)
	case host.FormatNodeMap:
		pairs := n.Value.([]host.Pair)
		dict := starlarkLib.NewDict(len(pairs))
		for _, p := range pairs {
			// keys are unique by host contract; SetKey on an unfrozen dict
			// with a string key cannot fail
			_ = dict.SetKey(starlarkLib.String(p.Key), convertNode(thread, p.Value))
		}
		return dict
	default:
		// not fatal: the unknown value becomes None, siblings are unaffected
		sc := contextFrom(thread)
		sc.Logger.Error(fmt.Sprintf("node mapping failed (format: %d)", int(n.Format)))
		return starlarkLib.None
	}
}

// newModule builds the native module guest code reaches host capabilities
// through.
func newModule() *starlarkstruct.Module {
	return &starlarkstruct.Module{
		Name: moduleName,
		Members: starlarkLib.StringDict{
			"log":           starlarkLib.NewBuiltin("log", logFn),
			"property_list": starlarkLib.NewBuiltin("property_list", propertyListFn),
			"get_property":  starlarkLib.NewBuiltin("get_property", getPropertyFn),
		},
	}
}

func logFn(thread *starlarkLib.Thread, b *starlarkLib.Builtin, args starlarkLib.Tuple, kwargs []starlarkLib.Tuple) (starlarkLib.Value, error) {
	var msg string
	if err := starlarkLib.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &msg); err != nil {
		return nil, err
	}

	// the message goes through verbatim; it is never a format string
	contextFrom(thread).Logger.Error(msg)
	return starlarkLib.None, nil
}

func propertyListFn(thread *starlarkLib.Thread, b *starlarkLib.Builtin, args starlarkLib.Tuple, kwargs []starlarkLib.Tuple) (starlarkLib.Value, error) {
	if err := starlarkLib.UnpackPositionalArgs(b.Name(), args, kwargs, 0); err != nil {
		return nil, err
	}

	sc := contextFrom(thread)
	names := sc.Client.Properties().Names()
	elems := make([]starlarkLib.Value, 0, len(names))
	for _, name := range names {
		elems = append(elems, starlarkLib.String(name))
	}
	return starlarkLib.NewList(elems), nil
}

func getPropertyFn(thread *starlarkLib.Thread, b *starlarkLib.Builtin, args starlarkLib.Tuple, kwargs []starlarkLib.Tuple) (starlarkLib.Value, error) {
	var name string
	if err := starlarkLib.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &name); err != nil {
		return nil, err
	}

	sc := contextFrom(thread)
	node, err := sc.Client.Properties().Get(name)
	if err != nil {
		sc.Logger.Error(fmt.Sprintf("get_property(%q) failed: %s", name, host.Reason(err)))
		return starlarkLib.None, nil
	}
	return convertNode(thread, node), nil
}
