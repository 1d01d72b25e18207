package loot

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/halbrec/RuinfangBot_Go/internal/domain"
)

// envelope is the serialized form of every node: a variant tag plus a
// variant-specific payload. Trees nest envelopes inside envelopes.
type envelope struct {
	Type Tag             `json:"type"`
	Data json.RawMessage `json:"data"`
}

type fixedPayload struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

type fixedItemPayload struct {
	ItemID     string         `json:"item_id"`
	Quantities map[string]int `json:"quantities"`
}

type fixedQuantityPayload struct {
	Items           map[string]int `json:"items"`
	SingleItemID    bool           `json:"single_item_id,omitempty"`
	DistinctItemIDs bool           `json:"distinct_item_ids,omitempty"`
	QuantityCaps    map[string]int `json:"quantity_caps,omitempty"`
	Quantity        int            `json:"quantity"`
}

type randomLootPayload struct {
	Items           map[string]int `json:"items"`
	SingleItemID    bool           `json:"single_item_id,omitempty"`
	DistinctItemIDs bool           `json:"distinct_item_ids,omitempty"`
	QuantityCaps    map[string]int `json:"quantity_caps,omitempty"`
	Quantities      map[string]int `json:"quantities"`
}

type possiblePayload struct {
	Percent float64         `json:"percent"`
	Inner   json.RawMessage `json:"inner"`
}

type repeatedPayload struct {
	Times int             `json:"times"`
	Inner json.RawMessage `json:"inner"`
}

type compositePayload struct {
	Children []json.RawMessage `json:"children"`
}

type choicePayload struct {
	Children []json.RawMessage `json:"children"`
	Weights  []int             `json:"weights"`
}

type uniformQuantityPayload struct {
	ItemID string `json:"item_id"`
	Min    int    `json:"min"`
	Max    int    `json:"max"`
}

// Marshal serializes a loot node to its {type, data} JSON form.
func Marshal(node Loot) ([]byte, error) {
	payload, err := payloadOf(node)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Type: node.Tag(), Data: data})
}

func payloadOf(node Loot) (any, error) {
	switch n := node.(type) {
	case *Empty:
		return struct{}{}, nil
	case *Fixed:
		return fixedPayload{ItemID: n.ItemID, Quantity: n.Quantity}, nil
	case *FixedItem:
		return fixedItemPayload{ItemID: n.ItemID, Quantities: intWeightsOut(n.Quantities)}, nil
	case *FixedQuantity:
		cfg := n.Config()
		return fixedQuantityPayload{
			Items:           cfg.Items,
			SingleItemID:    cfg.SingleItemID,
			DistinctItemIDs: cfg.DistinctItemIDs,
			QuantityCaps:    cfg.QuantityCaps,
			Quantity:        n.Quantity,
		}, nil
	case *RandomLoot:
		cfg := n.Config()
		return randomLootPayload{
			Items:           cfg.Items,
			SingleItemID:    cfg.SingleItemID,
			DistinctItemIDs: cfg.DistinctItemIDs,
			QuantityCaps:    cfg.QuantityCaps,
			Quantities:      intWeightsOut(n.Quantities),
		}, nil
	case *Possible:
		inner, err := Marshal(n.Inner)
		if err != nil {
			return nil, err
		}
		return possiblePayload{Percent: n.Percent, Inner: inner}, nil
	case *Repeated:
		inner, err := Marshal(n.Inner)
		if err != nil {
			return nil, err
		}
		return repeatedPayload{Times: n.Times, Inner: inner}, nil
	case *Composite:
		children, err := marshalChildren(n.Children)
		if err != nil {
			return nil, err
		}
		return compositePayload{Children: children}, nil
	case *Choice:
		children, err := marshalChildren(n.Children)
		if err != nil {
			return nil, err
		}
		weights := make([]int, len(n.Children))
		for i := range n.Children {
			weights[i] = n.Weights.Weight(i)
		}
		return choicePayload{Children: children, Weights: weights}, nil
	case *UniformQuantity:
		return uniformQuantityPayload{ItemID: n.ItemID, Min: n.Min, Max: n.Max}, nil
	default:
		return nil, fmt.Errorf("%w: cannot serialize loot type %T", domain.ErrUnsupportedOperation, node)
	}
}

// Unmarshal deserializes a {type, data} envelope back into a loot node,
// dispatching on the tag. Unknown tags fail with ErrUnsupportedOperation.
func Unmarshal(data []byte) (Loot, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("loot envelope: %w", err)
	}

	switch env.Type {
	case TagEmpty:
		return NewEmpty(), nil

	case TagFixed:
		var p fixedPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("loot %s payload: %w", env.Type, err)
		}
		return NewFixed(p.ItemID, p.Quantity)

	case TagFixedItem:
		var p fixedItemPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("loot %s payload: %w", env.Type, err)
		}
		quantities, err := intWeightsIn(p.Quantities)
		if err != nil {
			return nil, err
		}
		return NewFixedItem(p.ItemID, quantities)

	case TagFixedQuantity:
		var p fixedQuantityPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("loot %s payload: %w", env.Type, err)
		}
		cfg := RandomItemConfig{
			Items:           p.Items,
			SingleItemID:    p.SingleItemID,
			DistinctItemIDs: p.DistinctItemIDs,
			QuantityCaps:    p.QuantityCaps,
		}
		return NewFixedQuantity(cfg, p.Quantity)

	case TagRandomLoot:
		var p randomLootPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("loot %s payload: %w", env.Type, err)
		}
		quantities, err := intWeightsIn(p.Quantities)
		if err != nil {
			return nil, err
		}
		cfg := RandomItemConfig{
			Items:           p.Items,
			SingleItemID:    p.SingleItemID,
			DistinctItemIDs: p.DistinctItemIDs,
			QuantityCaps:    p.QuantityCaps,
		}
		return NewRandomLoot(cfg, quantities)

	case TagPossible:
		var p possiblePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("loot %s payload: %w", env.Type, err)
		}
		inner, err := Unmarshal(p.Inner)
		if err != nil {
			return nil, err
		}
		return NewPossible(inner, p.Percent)

	case TagRepeated:
		var p repeatedPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("loot %s payload: %w", env.Type, err)
		}
		inner, err := Unmarshal(p.Inner)
		if err != nil {
			return nil, err
		}
		return NewRepeated(inner, p.Times)

	case TagComposite:
		var p compositePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("loot %s payload: %w", env.Type, err)
		}
		children, err := unmarshalChildren(p.Children)
		if err != nil {
			return nil, err
		}
		return NewComposite(children...), nil

	case TagChoice:
		var p choicePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("loot %s payload: %w", env.Type, err)
		}
		children, err := unmarshalChildren(p.Children)
		if err != nil {
			return nil, err
		}
		return NewChoice(children, p.Weights)

	case TagUniformQuantity:
		var p uniformQuantityPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return nil, fmt.Errorf("loot %s payload: %w", env.Type, err)
		}
		return NewUniformQuantity(p.ItemID, p.Min, p.Max)

	default:
		return nil, fmt.Errorf("%w: unknown loot tag %q", domain.ErrUnsupportedOperation, env.Type)
	}
}

func marshalChildren(children []Loot) ([]json.RawMessage, error) {
	out := make([]json.RawMessage, 0, len(children))
	for _, child := range children {
		data, err := Marshal(child)
		if err != nil {
			return nil, err
		}
		out = append(out, data)
	}
	return out, nil
}

func unmarshalChildren(raw []json.RawMessage) ([]Loot, error) {
	out := make([]Loot, 0, len(raw))
	for _, data := range raw {
		child, err := Unmarshal(data)
		if err != nil {
			return nil, err
		}
		out = append(out, child)
	}
	return out, nil
}

// JSON object keys are strings, so integer weight maps cross the wire as
// map[string]int.

func intWeightsOut(wc *WeightedChoice[int]) map[string]int {
	out := make(map[string]int, wc.Len())
	for _, key := range wc.Keys() {
		out[strconv.Itoa(key)] = wc.Weight(key)
	}
	return out
}

func intWeightsIn(in map[string]int) (map[int]int, error) {
	out := make(map[int]int, len(in))
	for key, weight := range in {
		n, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("%w: non-integer quantity key %q", domain.ErrInvalidConfiguration, key)
		}
		out[n] = weight
	}
	return out, nil
}
