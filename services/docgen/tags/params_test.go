// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package tags

import (
	"reflect"
	"testing"
)

func TestParseParamValue_Simple(t *testing.T) {
	info := ParseParamValue("{string} name - the raw text")
	if !reflect.DeepEqual(info.Types, []string{"string"}) {
		t.Errorf("unexpected types: %v", info.Types)
	}
	if info.Name != "name" {
		t.Errorf("expected name 'name', got %q", info.Name)
	}
	if info.Description != "the raw text" {
		t.Errorf("unexpected description: %q", info.Description)
	}
	if info.Optional || info.Spread {
		t.Error("expected neither optional nor spread")
	}
}

func TestParseParamValue_UnionType(t *testing.T) {
	info := ParseParamValue("{string|number} id")
	if !reflect.DeepEqual(info.Types, []string{"string", "number"}) {
		t.Errorf("unexpected types: %v", info.Types)
	}
	if info.Name != "id" {
		t.Errorf("expected name 'id', got %q", info.Name)
	}
}

func TestParseParamValue_OptionalWithDefault(t *testing.T) {
	info := ParseParamValue("{number} [limit=10] - page size")
	if !info.Optional {
		t.Error("expected optional")
	}
	if info.Name != "limit" {
		t.Errorf("expected name 'limit', got %q", info.Name)
	}
	if info.Default != "10" {
		t.Errorf("expected default '10', got %q", info.Default)
	}
	if info.Description != "page size" {
		t.Errorf("unexpected description: %q", info.Description)
	}
}

func TestParseParamValue_Spread(t *testing.T) {
	info := ParseParamValue("{...string} parts - path segments")
	if !info.Spread {
		t.Error("expected spread")
	}
	if !reflect.DeepEqual(info.Types, []string{"string"}) {
		t.Errorf("unexpected types: %v", info.Types)
	}
	if info.Name != "parts" {
		t.Errorf("expected name 'parts', got %q", info.Name)
	}
}

func TestParseParamValue_BareType(t *testing.T) {
	info := ParseParamValue("{Object}")
	if !reflect.DeepEqual(info.Types, []string{"Object"}) {
		t.Errorf("unexpected types: %v", info.Types)
	}
	if info.Name != "" {
		t.Errorf("expected empty name, got %q", info.Name)
	}
}

func TestParseParamValue_NestedBraces(t *testing.T) {
	info := ParseParamValue("{{a: string, b: number}} pair")
	if len(info.Types) != 1 || info.Types[0] != "{a: string, b: number}" {
		t.Errorf("unexpected types: %v", info.Types)
	}
	if info.Name != "pair" {
		t.Errorf("expected name 'pair', got %q", info.Name)
	}
}

func TestParseParamValue_DegradesToStar(t *testing.T) {
	info := ParseParamValue("just some prose, no type group")
	if !reflect.DeepEqual(info.Types, []string{"*"}) {
		t.Errorf("unexpected types: %v", info.Types)
	}
	if info.Description != "just some prose, no type group" {
		t.Errorf("unexpected description: %q", info.Description)
	}
}

func TestParseParamValue_TypeThenDescription(t *testing.T) {
	info := ParseParamValue("{boolean} - whether retries are enabled")
	if info.Name != "" {
		t.Errorf("expected empty name, got %q", info.Name)
	}
	if info.Description != "whether retries are enabled" {
		t.Errorf("unexpected description: %q", info.Description)
	}
}
