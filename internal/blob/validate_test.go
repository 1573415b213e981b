package blob

import "testing"

func TestValidJSON(t *testing.T) {
	valid := []string{
		`{}`,
		`{"a":1}`,
		`[]`,
		`[1,2,3]`,
		`"string"`,
		`42`,
		`3.14`,
		`true`,
		`null`,
		"  {\"padded\": true}\n",
		`{"nested":{"deep":[{"x":null}]}}`,
	}
	for _, input := range valid {
		if !ValidJSON(input) {
			t.Errorf("ValidJSON(%q): expected true", input)
		}
	}

	invalid := []string{
		"",
		"   ",
		"\n\t",
		`{`,
		`{"a":}`,
		`{"a":1,}`,
		`[1,2`,
		`'single'`,
		`{"a":1} trailing`,
		`undefined`,
	}
	for _, input := range invalid {
		if ValidJSON(input) {
			t.Errorf("ValidJSON(%q): expected false", input)
		}
	}
}
