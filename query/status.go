package query

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Tnze/go-mc/chat"
)

const (
	UnknownVersion = "Unknown version"

	keyLatency = "latencyMillis"
)

// RawStatus is the status document as the server sent it, plus latencyMillis.
// JSON numbers are kept as json.Number.
type RawStatus map[string]interface{}

// lookup walks nested objects. A missing or null value is reported as absent.
func (raw RawStatus) lookup(path ...string) (interface{}, bool) {
	var current interface{} = map[string]interface{}(raw)
	for _, key := range path {
		obj, ok := asObject(current)
		if !ok {
			return nil, false
		}
		current, ok = obj[key]
		if !ok || current == nil {
			return nil, false
		}
	}
	return current, true
}

func (raw RawStatus) clone() RawStatus {
	return RawStatus(cloneValue(map[string]interface{}(raw)).(map[string]interface{}))
}

func cloneValue(v interface{}) interface{} {
	switch value := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(value))
		for key, elem := range value {
			out[key] = cloneValue(elem)
		}
		return out
	case RawStatus:
		return cloneValue(map[string]interface{}(value))
	case []interface{}:
		out := make([]interface{}, len(value))
		for i, elem := range value {
			out[i] = cloneValue(elem)
		}
		return out
	default:
		return v
	}
}

func asObject(v interface{}) (map[string]interface{}, bool) {
	switch obj := v.(type) {
	case map[string]interface{}:
		return obj, true
	case RawStatus:
		return obj, true
	}
	return nil, false
}

type PlayerSample struct {
	Name string
	ID   string
}

// Result is the normalized status of a server. It is never modified after
// it has been built.
type Result struct {
	version         string
	protocolVersion int
	onlinePlayers   int
	maxPlayers      int
	playersSample   []PlayerSample
	messageOfTheDay string
	favicon         *string
	latencyMillis   int
}

func NewResult(version string, protocolVersion, onlinePlayers, maxPlayers int, playersSample []PlayerSample, messageOfTheDay string, favicon *string, latencyMillis int) Result {
	sample := make([]PlayerSample, len(playersSample))
	copy(sample, playersSample)
	if favicon != nil {
		f := *favicon
		favicon = &f
	}
	return Result{
		version:         version,
		protocolVersion: protocolVersion,
		onlinePlayers:   onlinePlayers,
		maxPlayers:      maxPlayers,
		playersSample:   sample,
		messageOfTheDay: messageOfTheDay,
		favicon:         favicon,
		latencyMillis:   latencyMillis,
	}
}

// ResultFromRaw applies the field defaults to a raw status.
func ResultFromRaw(raw RawStatus) Result {
	version := UnknownVersion
	if v, ok := raw.lookup("version", "name"); ok {
		version = toString(v)
	}

	var motd string
	if v, ok := raw.lookup("description", "text"); ok {
		motd = toString(v)
	}

	var favicon *string
	if v, ok := raw.lookup("favicon"); ok {
		f := toString(v)
		favicon = &f
	}

	return NewResult(
		version,
		lookupInt(raw, "version", "protocol"),
		lookupInt(raw, "players", "online"),
		lookupInt(raw, "players", "max"),
		playersSample(raw),
		motd,
		favicon,
		lookupInt(raw, keyLatency),
	)
}

func (r Result) Version() string {
	return r.version
}

func (r Result) ProtocolVersion() int {
	return r.protocolVersion
}

func (r Result) OnlinePlayers() int {
	return r.onlinePlayers
}

func (r Result) MaxPlayers() int {
	return r.maxPlayers
}

func (r Result) PlayersSample() []PlayerSample {
	sample := make([]PlayerSample, len(r.playersSample))
	copy(sample, r.playersSample)
	return sample
}

func (r Result) MessageOfTheDay() string {
	return r.messageOfTheDay
}

// Favicon returns the base64 data URI of the server icon, if it sent one.
func (r Result) Favicon() (string, bool) {
	if r.favicon == nil {
		return "", false
	}
	return *r.favicon, true
}

func (r Result) LatencyMillis() int {
	return r.latencyMillis
}

func (r Result) Latency() time.Duration {
	return time.Duration(r.latencyMillis) * time.Millisecond
}

// PlainDescription renders the description as plain text. Unlike
// MessageOfTheDay it understands chat components, so a description sent as
// a bare string or split into "extra" parts is flattened too.
func PlainDescription(raw RawStatus) string {
	desc, ok := raw.lookup("description")
	if !ok {
		return ""
	}
	if text, ok := desc.(string); ok {
		return text
	}

	bb, err := json.Marshal(desc)
	if err != nil {
		return ResultFromRaw(raw).MessageOfTheDay()
	}
	var msg chat.Message
	if err := json.Unmarshal(bb, &msg); err != nil {
		return ResultFromRaw(raw).MessageOfTheDay()
	}
	return msg.ClearString()
}

func playersSample(raw RawStatus) []PlayerSample {
	v, ok := raw.lookup("players", "sample")
	if !ok {
		return nil
	}
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}

	sample := make([]PlayerSample, 0, len(list))
	for _, entry := range list {
		obj, ok := asObject(entry)
		if !ok {
			continue
		}
		var player PlayerSample
		if name, ok := obj["name"]; ok && name != nil {
			player.Name = toString(name)
		}
		if id, ok := obj["id"]; ok && id != nil {
			player.ID = toString(id)
		}
		sample = append(sample, player)
	}
	return sample
}

func lookupInt(raw RawStatus, path ...string) int {
	v, ok := raw.lookup(path...)
	if !ok {
		return 0
	}
	return toInt(v)
}

// toInt converts the way a loosely typed status document expects: numbers
// are truncated, strings are read up to their first non-digit.
func toInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int32:
		return int(n)
	case int64:
		return int(n)
	case float64:
		return truncate(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return int(i)
		}
		if f, err := n.Float64(); err == nil {
			return truncate(f)
		}
		return 0
	case string:
		return leadingInt(n)
	case bool:
		if n {
			return 1
		}
	}
	return 0
}

func truncate(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return int(f)
}

func leadingInt(s string) int {
	s = strings.TrimLeft(s, " \t\n\r\v\f")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

func toString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case json.Number:
		return s.String()
	case bool:
		if s {
			return "1"
		}
		return ""
	case map[string]interface{}, RawStatus, []interface{}:
		return ""
	}
	return fmt.Sprint(v)
}
