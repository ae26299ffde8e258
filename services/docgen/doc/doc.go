// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package doc defines the documentation object model: the structured record
// produced for every documentable construct in a source file.
package doc

import (
	"encoding/json"
	"fmt"

	"github.com/AleutianAI/AleutianDocs/services/docgen/tags"
)

// Category identifies what kind of construct a Doc describes.
//
// The zero value is CategoryUnknown, which never appears in a valid Doc.
type Category int

const (
	// CategoryUnknown is an invalid, uninitialized category.
	CategoryUnknown Category = iota

	// CategoryFile describes one source file.
	CategoryFile

	// CategoryModule describes the module a file defines.
	CategoryModule

	// CategoryModuleClass is a class declared at module top level.
	CategoryModuleClass

	// CategoryModuleFunction is a function declared at module top level.
	CategoryModuleFunction

	// CategoryModuleVariable is a variable declared at module top level.
	CategoryModuleVariable

	// CategoryModuleAssignment is a bare assignment at module top level.
	CategoryModuleAssignment

	// CategoryClassMethod is a regular method of a documented class.
	CategoryClassMethod

	// CategoryClassMember is an accessor or a `this.x = ...` member.
	CategoryClassMember

	// CategoryClassProperty is a field definition of a documented class.
	CategoryClassProperty

	// CategoryVirtualTypedef is a @typedef declaration.
	CategoryVirtualTypedef

	// CategoryVirtualExternal is an @external declaration.
	CategoryVirtualExternal

	// CategoryTest is a @test-tagged block.
	CategoryTest
)

// categoryNames maps Category values to their string representations.
var categoryNames = map[Category]string{
	CategoryUnknown:          "Unknown",
	CategoryFile:             "File",
	CategoryModule:           "Module",
	CategoryModuleClass:      "ModuleClass",
	CategoryModuleFunction:   "ModuleFunction",
	CategoryModuleVariable:   "ModuleVariable",
	CategoryModuleAssignment: "ModuleAssignment",
	CategoryClassMethod:      "ClassMethod",
	CategoryClassMember:      "ClassMember",
	CategoryClassProperty:    "ClassProperty",
	CategoryVirtualTypedef:   "VirtualTypedef",
	CategoryVirtualExternal:  "VirtualExternal",
	CategoryTest:             "Test",
}

// String returns the string representation of the category.
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// MarshalJSON implements json.Marshaler.
func (c Category) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *Category) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory converts a category name back into a Category.
func ParseCategory(s string) (Category, error) {
	for cat, name := range categoryNames {
		if name == s {
			return cat, nil
		}
	}
	return CategoryUnknown, fmt.Errorf("unknown doc category: %q", s)
}

// TypeDesc is a type annotation attached to a doc object.
type TypeDesc struct {
	// Names lists the candidate type names, e.g. ["string", "number"] or a
	// single longname reference like ["src/foo.js~Foo"].
	Names []string `json:"names"`

	// Description is optional free text about the type.
	Description string `json:"description,omitempty"`
}

// Param describes one parameter (or a return value) of a function-like doc.
type Param struct {
	Name        string   `json:"name,omitempty"`
	Types       []string `json:"types"`
	Optional    bool     `json:"optional,omitempty"`
	Default     string   `json:"default,omitempty"`
	Spread      bool     `json:"spread,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Doc is the structured record describing one documentable construct.
//
// Description:
//
//	One Doc is produced per winning documentation comment per construct;
//	undocumented constructs still produce one Doc carrying Undocumented.
//	Docs are stored and queried through the docdb package, which hands out
//	live references: export reconciliation mutates the visibility fields of
//	previously inserted Docs in place.
//
// Thread Safety:
//
//	A Doc is written by the generation run that owns its file and must not
//	be mutated concurrently. Cross-file generation only shares the ID
//	counter, never Doc instances.
type Doc struct {
	// ID is the globally unique, monotonically increasing identifier.
	ID int64 `json:"id"`

	// Category classifies the construct.
	Category Category `json:"category"`

	// ModuleID is the ID of the Doc describing the owning module.
	ModuleID int64 `json:"module_id,omitempty"`

	// Name is the construct's local name.
	Name string `json:"name"`

	// Longname is the fully qualified name, `<filePath>~<name>` for
	// module-level constructs and `<memberof>#<name>` for class members.
	Longname string `json:"longname,omitempty"`

	// Memberof is the longname of the enclosing scope.
	Memberof string `json:"memberof,omitempty"`

	// FilePath is the source file this doc was generated from.
	FilePath string `json:"file_path"`

	// LineNumber is the 1-based line the construct starts on.
	LineNumber int `json:"line_number,omitempty"`

	// Export reports whether the construct is exported from its module.
	Export bool `json:"export"`

	// ImportStyle is how a consumer imports the construct: "Foo" for a
	// default export accessed by name, "{foo}" for a named export, empty
	// when the construct is not importable directly (pseudo exports) or
	// when export syntax already wraps the declaration.
	ImportStyle string `json:"import_style,omitempty"`

	// Ignore excludes the doc from downstream consumers.
	Ignore bool `json:"ignore,omitempty"`

	// Undocumented marks docs produced from the placeholder comment.
	Undocumented bool `json:"undocumented,omitempty"`

	// Description is the construct's prose documentation.
	Description string `json:"description,omitempty"`

	// Type is the declared or guessed type for variables, properties,
	// members, typedefs and assignments.
	Type *TypeDesc `json:"type,omitempty"`

	// Params and Return describe function-like constructs.
	Params []Param `json:"params,omitempty"`
	Return *Param  `json:"return,omitempty"`

	// Function/method modifiers.
	Async     bool   `json:"async,omitempty"`
	Generator bool   `json:"generator,omitempty"`
	Static    bool   `json:"static,omitempty"`
	Kind      string `json:"kind,omitempty"` // "get", "set", "constructor", "method"

	// ContentHash links CategoryFile docs to their source content.
	ContentHash string `json:"content_hash,omitempty"`

	// Tags preserves the winning comment's full parsed tag list.
	Tags []tags.Tag `json:"tags,omitempty"`
}

// Validate checks structural invariants before storage.
func (d *Doc) Validate() error {
	if d == nil {
		return &ValidationError{Field: "doc", Message: "must not be nil"}
	}
	if d.Category == CategoryUnknown {
		return &ValidationError{Field: "category", Message: "must be set"}
	}
	if d.Name == "" {
		return &ValidationError{Field: "name", Message: "must not be empty"}
	}
	if d.FilePath == "" {
		return &ValidationError{Field: "file_path", Message: "must not be empty"}
	}
	return nil
}

// ValidationError describes a single invalid field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid doc: %s %s", e.Field, e.Message)
}

// Longname helpers shared by the generator and reconciler.

// ModuleLongname returns the longname of a module-level construct.
func ModuleLongname(filePath, name string) string {
	return filePath + "~" + name
}

// MemberLongname returns the longname of a class member.
func MemberLongname(classLongname, name string) string {
	return classLongname + "#" + name
}
