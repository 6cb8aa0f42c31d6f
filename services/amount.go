package services

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// Amount is a decimal money value kept as its textual form. The backend sends decimals either as
// JSON strings ("118.00") or as numbers (118.0) depending on the endpoint.
type Amount string

func (a *Amount) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*a = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*a = Amount(n.String())
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(a))
}

// Float64 parses the amount. An empty amount is zero.
func (a Amount) Float64() (float64, error) {
	if a == "" {
		return 0, nil
	}
	return strconv.ParseFloat(string(a), 64)
}

func (a Amount) String() string {
	return string(a)
}
