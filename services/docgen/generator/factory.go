// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package generator

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/AleutianAI/AleutianDocs/services/docgen/ast"
	"github.com/AleutianAI/AleutianDocs/services/docgen/doc"
	"github.com/AleutianAI/AleutianDocs/services/docgen/guess"
	"github.com/AleutianAI/AleutianDocs/services/docgen/tags"
)

// buildDoc constructs the doc object for one classification.
//
// Description:
//
//	Fills the common fields (module linkage, location, tag-driven
//	description and flags), then the category-specific ones: names and
//	longnames per scope, parameter/return info for callables, declared or
//	guessed types for value-holding constructs. Explicit tags always beat
//	shape guesses. Returns nil when no valid doc can be derived (for
//	example an assignment with no resolvable name); the caller treats nil
//	as "nothing to insert".
func (rc *runContext) buildDoc(cls classification, tagList []tags.Tag, exported bool) *doc.Doc {
	node := cls.node
	d := &doc.Doc{
		Category:   cls.category,
		ModuleID:   rc.moduleID,
		FilePath:   rc.filePath,
		LineNumber: node.Loc.StartLine,
		Tags:       tagList,
	}

	rc.applyCommonTags(d, tagList)
	d.Export = d.Export || exported

	switch cls.category {
	case doc.CategoryModuleClass:
		d.Name = pickName(node.Name, cls.ownerName)
		rc.placeAtModule(d)

	case doc.CategoryModuleFunction:
		d.Name = pickName(node.Name, cls.ownerName)
		rc.placeAtModule(d)
		rc.applyCallable(d, node, tagList)

	case doc.CategoryModuleVariable:
		first := node.Declarations[0]
		d.Name = first.Name
		if d.Name == "" {
			rc.logger.Debug("variable declaration without a name", slog.String("node", node.Summary()))
			return nil
		}
		rc.placeAtModule(d)
		rc.applyType(d, tagList, first.Init)

	case doc.CategoryModuleAssignment:
		if node.Left == nil || node.Left.Name == "" {
			rc.logger.Debug("assignment without a resolvable name", slog.String("node", node.Summary()))
			return nil
		}
		d.Name = node.Left.Name
		rc.placeAtModule(d)
		rc.applyType(d, tagList, node.Right)

	case doc.CategoryClassMethod:
		d.Name = node.Name
		d.Kind = node.MethodKind
		d.Static = d.Static || node.Static
		rc.placeAtClass(d, cls.class)
		rc.applyCallable(d, node, tagList)

	case doc.CategoryClassMember:
		if node.Kind == ast.KindClassMethod {
			// Accessor form.
			d.Name = node.Name
			d.Kind = node.MethodKind
			d.Static = d.Static || node.Static
			rc.placeAtClass(d, cls.class)
			rc.applyType(d, tagList, nil)
		} else {
			// `this.<member> = value` form.
			d.Name = node.Left.Name
			rc.placeAtClass(d, cls.class)
			rc.applyType(d, tagList, node.Right)
		}
		if d.Name == "" {
			rc.logger.Debug("class member without a resolvable name", slog.String("node", node.Summary()))
			return nil
		}

	case doc.CategoryClassProperty:
		d.Name = node.Name
		d.Static = d.Static || node.Static
		rc.placeAtClass(d, cls.class)
		rc.applyType(d, tagList, node.Init)

	case doc.CategoryVirtualTypedef:
		tag, _ := tags.Find(tagList, tags.TagTypedef)
		info := tags.ParseParamValue(tag.Value)
		if info.Name == "" {
			rc.logger.Debug("typedef tag without a name", slog.String("value", tag.Value))
			return nil
		}
		d.Name = info.Name
		d.Type = &doc.TypeDesc{Names: info.Types}
		rc.placeAtModule(d)

	case doc.CategoryVirtualExternal:
		tag, _ := tags.Find(tagList, tags.TagExternal)
		info := tags.ParseParamValue(tag.Value)
		name := info.Name
		if name == "" && len(info.Types) == 1 && info.Types[0] != "*" {
			name = info.Types[0]
		}
		if name == "" {
			rc.logger.Debug("external tag without a name", slog.String("value", tag.Value))
			return nil
		}
		d.Name = name
		d.Type = &doc.TypeDesc{Names: info.Types}
		rc.placeAtModule(d)

	case doc.CategoryTest:
		tag, _ := tags.Find(tagList, tags.TagTest)
		name := strings.TrimSpace(tag.Value)
		if idx := strings.IndexByte(name, '\n'); idx >= 0 {
			name = strings.TrimSpace(name[:idx])
		}
		if name == "" {
			name = fmt.Sprintf("test%d", node.Loc.StartLine)
		}
		d.Name = name
		rc.placeAtModule(d)

	default:
		return nil
	}

	return d
}

// pickName resolves a construct's name with the anonymous-form fallback:
// the node's own name, then the owning variable/assignment name, then
// "default" for anonymous default exports.
func pickName(own, owner string) string {
	if own != "" {
		return own
	}
	if owner != "" {
		return owner
	}
	return "default"
}

// placeAtModule fills scope fields for a module-level construct.
func (rc *runContext) placeAtModule(d *doc.Doc) {
	d.Longname = doc.ModuleLongname(rc.filePath, d.Name)
	d.Memberof = rc.filePath
}

// placeAtClass fills scope fields for a class-scoped construct. Static
// members qualify with "." and instance members with "#".
func (rc *runContext) placeAtClass(d *doc.Doc, class *doc.Doc) {
	d.Memberof = class.Longname
	if d.Static {
		d.Longname = class.Longname + "." + d.Name
		return
	}
	d.Longname = doc.MemberLongname(class.Longname, d.Name)
}

// applyCommonTags maps the tags every category honors onto the doc.
func (rc *runContext) applyCommonTags(d *doc.Doc, tagList []tags.Tag) {
	if t, ok := tags.Find(tagList, tags.TagDesc); ok {
		d.Description = t.Value
	}
	d.Undocumented = tags.Has(tagList, tags.TagUndocument)
	d.Ignore = tags.Has(tagList, tags.TagIgnore)
	d.Export = tags.Has(tagList, tags.TagExport)
	d.Async = tags.Has(tagList, tags.TagAsync)
	d.Static = tags.Has(tagList, tags.TagStatic)
	if t, ok := tags.Find(tagList, tags.TagKind); ok {
		d.Kind = strings.TrimSpace(t.Value)
	}
}

// applyCallable fills parameter and return info for function-like nodes.
// Explicit @param/@return tags win; otherwise both are guessed from the
// node shape.
func (rc *runContext) applyCallable(d *doc.Doc, node *ast.Node, tagList []tags.Tag) {
	d.Async = d.Async || node.Async
	d.Generator = node.Generator

	var params []doc.Param
	for _, t := range tagList {
		if t.Name != tags.TagParam {
			continue
		}
		info := tags.ParseParamValue(t.Value)
		params = append(params, doc.Param{
			Name:        info.Name,
			Types:       info.Types,
			Optional:    info.Optional,
			Default:     info.Default,
			Spread:      info.Spread,
			Description: info.Description,
		})
	}
	if len(params) == 0 {
		params = guess.Params(node)
	}
	d.Params = params

	if t, ok := findReturnTag(tagList); ok {
		info := tags.ParseParamValue(t.Value)
		description := info.Description
		if info.Name != "" {
			// Return values have no name slot; the first word is prose.
			description = strings.TrimSpace(info.Name + " " + description)
		}
		d.Return = &doc.Param{Types: info.Types, Description: description}
	} else if guessed := guess.ReturnType(node); guessed != nil {
		d.Return = &doc.Param{Types: guessed.Names}
	}
}

// findReturnTag accepts both @return and @returns spellings.
func findReturnTag(tagList []tags.Tag) (tags.Tag, bool) {
	if t, ok := tags.Find(tagList, tags.TagReturns); ok {
		return t, true
	}
	return tags.Find(tagList, tags.TagReturn)
}

// applyType sets a value-holding construct's type: the explicit @type tag
// when present, otherwise a shape guess from the initializing expression.
func (rc *runContext) applyType(d *doc.Doc, tagList []tags.Tag, init *ast.Node) {
	if t, ok := tags.Find(tagList, tags.TagType); ok {
		info := tags.ParseParamValue(t.Value)
		d.Type = &doc.TypeDesc{Names: info.Types, Description: info.Description}
		return
	}
	if guessed := guess.ExprType(init); guessed != nil {
		d.Type = guessed
	}
}
