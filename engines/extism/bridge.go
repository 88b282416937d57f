package extism

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/robbyt/go-scripthost/host"
)

// convertNodeJSON serializes a host tagged value for transfer into plugin
// memory. WASM guests share no object model with the host, so the bridge
// speaks JSON: the whole tree is rendered host-side and crosses the
// boundary as one buffer. Map member order follows the host's insertion
// order; flags use the host's sign convention.
func convertNodeJSON(sc *ScriptContext, n host.Node) []byte {
	var buf bytes.Buffer
	appendNodeJSON(sc, &buf, n)
	return buf.Bytes()
}

func appendNodeJSON(sc *ScriptContext, buf *bytes.Buffer, n host.Node) {
	switch n.Format {
	case host.FormatNone:
		buf.WriteString("null")
	case host.FormatString:
		appendJSONString(buf, n.Value.(string))
	case host.FormatFlag:
		buf.WriteString(strconv.FormatBool(n.Truth()))
	case host.FormatInt64:
		buf.WriteString(strconv.FormatInt(n.Value.(int64), 10))
	case host.FormatDouble:
		buf.WriteString(strconv.FormatFloat(n.Value.(float64), 'g', -1, 64))
	case host.FormatNodeArray:
		buf.WriteByte('[')
		for i, item := range n.Value.([]host.Node) {
			if i > 0 {
				buf.WriteByte(',')
			}
			appendNodeJSON(sc, buf, item)
		}
		buf.WriteByte(']')
	case host.FormatNodeMap:
		buf.WriteByte('{')
		for i, p := range n.Value.([]host.Pair) {
			if i > 0 {
				buf.WriteByte(',')
			}
			appendJSONString(buf, p.Key)
			buf.WriteByte(':')
			appendNodeJSON(sc, buf, p.Value)
		}
		buf.WriteByte('}')
	default:
		// not fatal: the unknown value becomes null, siblings are unaffected
		sc.Logger.Error(fmt.Sprintf("node mapping failed (format: %d)", int(n.Format)))
		buf.WriteString("null")
	}
}

func appendJSONString(buf *bytes.Buffer, s string) {
	b, err := json.Marshal(s)
	if err != nil {
		// marshalling a string cannot fail; keep the member well-formed anyway
		buf.WriteString(`""`)
		return
	}
	buf.Write(b)
}
