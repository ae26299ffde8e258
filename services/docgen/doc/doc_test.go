// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package doc

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestCategory_JSONRoundTrip(t *testing.T) {
	data, err := json.Marshal(CategoryModuleClass)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(data) != `"ModuleClass"` {
		t.Errorf("unexpected JSON: %s", data)
	}

	var c Category
	if err := json.Unmarshal(data, &c); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if c != CategoryModuleClass {
		t.Errorf("expected CategoryModuleClass, got %v", c)
	}
}

func TestCategory_UnmarshalUnknown(t *testing.T) {
	var c Category
	if err := json.Unmarshal([]byte(`"NotACategory"`), &c); err == nil {
		t.Error("expected error for unknown category name")
	}
}

func TestParseCategory(t *testing.T) {
	c, err := ParseCategory("ModuleFunction")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != CategoryModuleFunction {
		t.Errorf("expected CategoryModuleFunction, got %v", c)
	}
	if _, err := ParseCategory("bogus"); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestValidate(t *testing.T) {
	valid := &Doc{
		Category: CategoryModuleVariable,
		Name:     "answer",
		FilePath: "a.js",
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("expected valid doc, got %v", err)
	}

	cases := []struct {
		name string
		doc  *Doc
	}{
		{"nil doc", nil},
		{"unset category", &Doc{Name: "x", FilePath: "a.js"}},
		{"empty name", &Doc{Category: CategoryModuleVariable, FilePath: "a.js"}},
		{"empty file path", &Doc{Category: CategoryModuleVariable, Name: "x"}},
	}
	for _, tc := range cases {
		err := tc.doc.Validate()
		if err == nil {
			t.Errorf("%s: expected validation error", tc.name)
			continue
		}
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: expected *ValidationError, got %T", tc.name, err)
		}
	}
}

func TestLongnames(t *testing.T) {
	module := ModuleLongname("src/app.js", "Widget")
	if module != "src/app.js~Widget" {
		t.Errorf("unexpected module longname: %q", module)
	}
	member := MemberLongname(module, "render")
	if member != "src/app.js~Widget#render" {
		t.Errorf("unexpected member longname: %q", member)
	}
}
