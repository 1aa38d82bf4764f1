package model

import (
	"encoding/json"
	"fmt"
)

// lineEnvelope tags a serialized cart line with its kind so the closed
// variant set survives a round trip through JSON storage.
type lineEnvelope struct {
	Kind LineKind        `json:"kind"`
	Data json.RawMessage `json:"data"`
}

type cartJSON struct {
	OrgID      string         `json:"org_id"`
	LocationID string         `json:"location_id"`
	Lines      []lineEnvelope `json:"lines"`
	Discounts  []Discount     `json:"discounts,omitempty"`
	TaxRate    float64        `json:"tax_rate"`
}

func (c Cart) MarshalJSON() ([]byte, error) {
	out := cartJSON{
		OrgID:      c.OrgID,
		LocationID: c.LocationID,
		Discounts:  c.Discounts,
		TaxRate:    c.TaxRate,
	}
	for _, line := range c.Lines {
		data, err := json.Marshal(line)
		if err != nil {
			return nil, err
		}
		out.Lines = append(out.Lines, lineEnvelope{Kind: line.Kind(), Data: data})
	}
	return json.Marshal(out)
}

func (c *Cart) UnmarshalJSON(b []byte) error {
	var in cartJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	c.OrgID = in.OrgID
	c.LocationID = in.LocationID
	c.Discounts = in.Discounts
	c.TaxRate = in.TaxRate
	c.Lines = nil
	for _, env := range in.Lines {
		line, err := decodeLine(env)
		if err != nil {
			return err
		}
		c.Lines = append(c.Lines, line)
	}
	return nil
}

func decodeLine(env lineEnvelope) (CartLine, error) {
	var line CartLine
	switch env.Kind {
	case LineKindShop:
		var l ShopLine
		if err := json.Unmarshal(env.Data, &l); err != nil {
			return nil, err
		}
		line = l
	case LineKindClass:
		var l ClassLine
		if err := json.Unmarshal(env.Data, &l); err != nil {
			return nil, err
		}
		line = l
	case LineKindCourse:
		var l CourseLine
		if err := json.Unmarshal(env.Data, &l); err != nil {
			return nil, err
		}
		line = l
	case LineKindGeneral:
		var l GeneralLine
		if err := json.Unmarshal(env.Data, &l); err != nil {
			return nil, err
		}
		line = l
	case LineKindCasual:
		var l CasualLine
		if err := json.Unmarshal(env.Data, &l); err != nil {
			return nil, err
		}
		line = l
	case LineKindMembership:
		var l MembershipLine
		if err := json.Unmarshal(env.Data, &l); err != nil {
			return nil, err
		}
		line = l
	case LineKindPrepaid:
		var l PrepaidLine
		if err := json.Unmarshal(env.Data, &l); err != nil {
			return nil, err
		}
		line = l
	default:
		return nil, fmt.Errorf("unknown cart line kind %q", env.Kind)
	}
	return line, nil
}
