package inventory

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownBlockKind is returned when a record's type does not name one of
// the supported block kinds.
var ErrUnknownBlockKind = errors.New("unknown block kind")

// wireBlock mirrors the loose record shape produced by layout editors.
// Numeric fields stay raw so that strings, nulls and garbage can be coerced
// instead of failing the whole document.
type wireBlock struct {
	Type     string          `json:"type"`
	ID       json.RawMessage `json:"id"`
	Name     string          `json:"name"`
	Label    string          `json:"label"`
	Position struct {
		X json.RawMessage `json:"x"`
		Y json.RawMessage `json:"y"`
	} `json:"position"`
	Width    json.RawMessage `json:"width"`
	Height   json.RawMessage `json:"height"`
	Rows     json.RawMessage `json:"rows"`
	RowCount json.RawMessage `json:"rowCount"`
	Columns  json.RawMessage `json:"columns"`
	Seats    []Seat          `json:"seats"`
	Capacity json.RawMessage `json:"capacity"`
}

var kindAliases = map[string]BlockKind{
	"SEATED_GRID":       KindSeatedGrid,
	"SEATED":            KindSeatedGrid,
	"GRID":              KindSeatedGrid,
	"STANDING_CAPACITY": KindStandingCapacity,
	"STANDING":          KindStandingCapacity,
	"NON_SELLABLE":      KindNonSellable,
	"NONSELLABLE":       KindNonSellable,
}

// ParseBlockKind resolves a type string, accepting the lower-case and
// hyphenated spellings layout editors emit.
func ParseBlockKind(s string) (BlockKind, error) {
	key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	if k, ok := kindAliases[key]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownBlockKind, s)
}

// DecodeBlock turns one JSON record into its concrete block.
func DecodeBlock(data []byte) (Block, error) {
	var w wireBlock
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("decode block: %w", err)
	}
	kind, err := ParseBlockKind(w.Type)
	if err != nil {
		return nil, err
	}
	name := w.Name
	if name == "" {
		name = w.Label
	}
	frame := Frame{
		ID:       rawString(w.ID),
		Name:     name,
		Position: Position{X: rawNumber(w.Position.X), Y: rawNumber(w.Position.Y)},
		Width:    rawNumber(w.Width),
		Height:   rawNumber(w.Height),
	}
	switch kind {
	case KindSeatedGrid:
		g := &SeatedGrid{Frame: frame, Seats: w.Seats, Columns: rawInt(w.Columns), RowCount: rawInt(w.RowCount)}
		// rows is either the row list or, in older records, a bare count
		trimmed := bytes.TrimSpace(w.Rows)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &g.Rows); err != nil {
				return nil, fmt.Errorf("decode block %s rows: %w", frame.ID, err)
			}
		} else if n := rawInt(w.Rows); n != nil && g.RowCount == nil {
			g.RowCount = n
		}
		return g, nil
	case KindStandingCapacity:
		capacity := 0
		if n := rawInt(w.Capacity); n != nil {
			capacity = *n
		}
		return &StandingCapacity{Frame: frame, Capacity: capacity, Seats: w.Seats}, nil
	default:
		return &NonSellable{Frame: frame}, nil
	}
}

// DecodeBlocks decodes a JSON array of block records.
func DecodeBlocks(data []byte) ([]Block, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode blocks: %w", err)
	}
	out := make([]Block, 0, len(raws))
	for i, raw := range raws {
		b, err := DecodeBlock(raw)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		out = append(out, b)
	}
	return out, nil
}

// BlockList is a JSON-decodable slice of blocks for request bodies.
type BlockList []Block

// UnmarshalJSON implements json.Unmarshaler.
func (l *BlockList) UnmarshalJSON(data []byte) error {
	blocks, err := DecodeBlocks(data)
	if err != nil {
		return err
	}
	*l = blocks
	return nil
}

func (b *SeatedGrid) MarshalJSON() ([]byte, error) {
	type plain SeatedGrid
	return json.Marshal(struct {
		Type BlockKind `json:"type"`
		*plain
	}{KindSeatedGrid, (*plain)(b)})
}

func (b *StandingCapacity) MarshalJSON() ([]byte, error) {
	type plain StandingCapacity
	return json.Marshal(struct {
		Type BlockKind `json:"type"`
		*plain
	}{KindStandingCapacity, (*plain)(b)})
}

func (b *NonSellable) MarshalJSON() ([]byte, error) {
	type plain NonSellable
	return json.Marshal(struct {
		Type BlockKind `json:"type"`
		*plain
	}{KindNonSellable, (*plain)(b)})
}

// rawNumber reads a JSON number or numeric string; anything else is absent.
func rawNumber(raw json.RawMessage) *float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	s := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &f
}

func rawInt(raw json.RawMessage) *int {
	f := rawNumber(raw)
	if f == nil || !finite(*f) {
		return nil
	}
	n := int(*f)
	return &n
}

// rawString accepts string or numeric ids.
func rawString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
