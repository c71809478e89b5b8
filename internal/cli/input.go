package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/jsonc"

	"github.com/iliyamo/seat-inventory/internal/inventory"
)

// readInput reads path, or stdin for "-", and strips JSONC comments and
// trailing commas so editor exports can be fed in as-is.
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return jsonc.ToJSON(data), nil
}

// layoutDocument is a layout input file.  It is either a bare array of
// block records or an object carrying blocks, tiers and geometry options.
type layoutDocument struct {
	Blocks  inventory.BlockList `json:"blocks"`
	Tiers   []inventory.Tier    `json:"tiers"`
	Options inventory.Overrides `json:"options"`
}

func decodeLayout(data []byte) (layoutDocument, error) {
	var doc layoutDocument
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &doc.Blocks); err != nil {
			return doc, err
		}
		return doc, nil
	}
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return doc, err
	}
	return doc, nil
}

func loadLayout(cmd *cobra.Command, path string) (layoutDocument, error) {
	data, err := readInput(cmd, path)
	if err != nil {
		return layoutDocument{}, err
	}
	doc, err := decodeLayout(data)
	if err != nil {
		return doc, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
