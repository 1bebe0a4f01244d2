package command

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/scattym/go-meitrack/wire"
)

// Command is a parsed or to-be-emitted command payload: an ordered list
// of byte-string fields named per the schema resolved for its type and
// direction. Unknown types carry Raw instead and Typed is false.
type Command struct {
	Type      Type
	Direction wire.Direction

	names  []string
	values [][]byte

	Typed bool
	Raw   []byte
}

// fieldNames returns the resolved field-name list for typ/direction,
// including AAA's event-code dispatch. ok is false for an unmodeled type.
func fieldNames(typ Type, direction wire.Direction, payload []byte) (names []string, schema Schema, ok bool) {
	if typ == AAA {
		fields := bytes.SplitN(payload, []byte(","), 3)
		if len(fields) < 2 {
			return nil, Schema{}, false
		}
		return aaaSchema(fields[1]), Schema{}, true
	}
	p, known := schemas[typ]
	if !known {
		return nil, Schema{}, false
	}
	if direction == wire.ServerToClient {
		if p.Request.Fields == nil {
			return nil, Schema{}, false
		}
		return p.Request.Fields, p.Request, true
	}
	if p.Response.Fields == nil {
		return nil, Schema{}, false
	}
	return p.Response.Fields, p.Response, true
}

// Parse decodes a command payload (everything from the start of
// command_type's own bytes through, but excluding, the trailing '*') into
// a typed Command. The command_type text remains glued onto the front of
// payload as field 0 ("command"): the frame codec reads it off the front
// to pick typ but does not strip it, matching the wire's literal byte
// layout (§3, §6). Unknown command types, or AAA payloads too short to
// carry an event code, fall back to an untyped Command carrying payload
// verbatim, per F-Inv-3.
func Parse(direction wire.Direction, typ Type, payload []byte) (*Command, error) {
	names, schema, ok := fieldNames(typ, direction, payload)
	if !ok {
		return &Command{Type: typ, Direction: direction, Typed: false, Raw: payload}, nil
	}

	var parts [][]byte
	if n := schema.split(); n > 0 {
		parts = bytes.SplitN(payload, []byte(","), n)
	} else {
		parts = bytes.Split(payload, []byte(","))
	}

	if len(names) < len(parts) {
		return nil, fmt.Errorf("%w: command %s direction %s has %d fields, schema allows %d",
			wire.ErrFieldCount, typ, direction, len(parts), len(names))
	}

	return &Command{
		Type:      typ,
		Direction: direction,
		names:     names,
		values:    parts,
		Typed:     true,
	}, nil
}

// New builds an empty typed Command for a fixed (non-AAA) command variant,
// with field 0 ("command") pre-set to typ's own text, ready for builders
// to Set its remaining fields. ok is false if typ/direction is unmodeled;
// AAA is never built this way (it is a device-originated report only).
func New(direction wire.Direction, typ Type) (cmd *Command, ok bool) {
	if typ == AAA {
		return nil, false
	}
	p, known := schemas[typ]
	if !known {
		return nil, false
	}
	var names []string
	if direction == wire.ServerToClient {
		names = p.Request.Fields
	} else {
		names = p.Response.Fields
	}
	if names == nil {
		return nil, false
	}
	cmd = &Command{
		Type:      typ,
		Direction: direction,
		names:     names,
		values:    make([][]byte, len(names)),
		Typed:     true,
	}
	cmd.Set("command", []byte(typ))
	return cmd, true
}

// Get returns the raw bytes of a named field and whether it was present
// in the parsed/constructed command (trailing fields may be absent).
func (c *Command) Get(name string) ([]byte, bool) {
	for i, n := range c.names {
		if n == name && i < len(c.values) {
			return c.values[i], true
		}
	}
	return nil, false
}

// Set assigns a named field's value, extending the backing slice with
// the field's position in the schema. Set on a field name the command's
// schema does not declare is a no-op: builders only ever set names that
// belong to the schema they constructed the Command against.
func (c *Command) Set(name string, value []byte) {
	idx := -1
	for i, n := range c.names {
		if n == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return
	}
	for len(c.values) <= idx {
		c.values = append(c.values, nil)
	}
	c.values[idx] = value
}

// GetDateTime parses the named field (conventionally "date_time") using
// the wire's fixed 12-character UTC form.
func (c *Command) GetDateTime(name string) (time.Time, bool) {
	b, present := c.Get(name)
	if !present {
		return time.Time{}, false
	}
	return parseDateTime(b)
}

// SetDateTime stores t under name in the wire's fixed 12-character UTC form.
func (c *Command) SetDateTime(name string, t time.Time) {
	c.Set(name, formatDateTime(t))
}

// Encode serializes a typed Command's present fields, in schema order,
// comma-joined; absent trailing fields are omitted. An untyped Command
// re-emits its raw payload unchanged.
func (c *Command) Encode() []byte {
	if !c.Typed {
		return c.Raw
	}
	last := -1
	for i := range c.names {
		if i < len(c.values) && c.values[i] != nil {
			last = i
		}
	}
	if last < 0 {
		return nil
	}
	out := make([][]byte, 0, last+1)
	for i := 0; i <= last; i++ {
		if i < len(c.values) && c.values[i] != nil {
			out = append(out, c.values[i])
		} else {
			out = append(out, nil)
		}
	}
	return bytes.Join(out, []byte(","))
}

// IsResponseError reports whether a response-direction Command carries an
// error indication per its command-type's convention (§7 error envelope).
// Request-direction commands, and types with no special convention,
// always report false.
func (c *Command) IsResponseError() bool {
	if c.Direction != wire.ClientToServer {
		return false
	}
	switch c.Type {
	case FC2:
		resp, _ := c.Get("ota_checksum")
		return string(resp) == "NOT"
	case FC7:
		resp, _ := c.Get("response")
		return string(resp) == "Err" || string(resp) == "FFFF"
	default:
		return false
	}
}

// EventCode returns the AAA event code as an integer, if present and
// well-formed.
func (c *Command) EventCode() (int, bool) {
	b, ok := c.Get("event_code")
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(string(b))
	if err != nil {
		return 0, false
	}
	return n, true
}
