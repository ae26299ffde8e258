// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ast

// JavaScript tree-sitter node types consumed by the parser adapter.
//
// The adapter uses direct node traversal rather than tree-sitter's query
// language for precise control over comment attachment and shape mapping.
//
// Reference: https://github.com/tree-sitter/tree-sitter-javascript
const (
	tsNodeProgram = "program"

	// Export-related nodes
	tsNodeExportStatement = "export_statement"
	tsNodeExportClause    = "export_clause"
	tsNodeExportSpecifier = "export_specifier"

	// Declaration nodes
	tsNodeFunctionDeclaration   = "function_declaration"
	tsNodeGeneratorFunctionDecl = "generator_function_declaration"
	tsNodeClassDeclaration      = "class_declaration"
	tsNodeLexicalDeclaration    = "lexical_declaration"
	tsNodeVariableDeclaration   = "variable_declaration"
	tsNodeVariableDeclarator    = "variable_declarator"

	// Class-related nodes
	tsNodeClass                = "class"
	tsNodeClassBody            = "class_body"
	tsNodeClassHeritage        = "class_heritage"
	tsNodeMethodDefinition     = "method_definition"
	tsNodeFieldDefinition      = "field_definition"
	tsNodePropertyIdentifier   = "property_identifier"
	tsNodePrivatePropertyIdent = "private_property_identifier"
	tsNodeComputedPropertyName = "computed_property_name"
	tsNodeDecorator            = "decorator"

	// Function-related nodes
	tsNodeFunctionExpression = "function_expression"
	tsNodeGeneratorFunction  = "generator_function"
	tsNodeArrowFunction      = "arrow_function"
	tsNodeFormalParameters   = "formal_parameters"
	tsNodeRestPattern        = "rest_pattern"
	tsNodeObjectPattern      = "object_pattern"
	tsNodeAssignmentPattern  = "assignment_pattern"
	tsNodeStatementBlock     = "statement_block"
	tsNodeReturnStatement    = "return_statement"

	// Expression nodes
	tsNodeExpressionStatement  = "expression_statement"
	tsNodeAssignmentExpression = "assignment_expression"
	tsNodeCallExpression       = "call_expression"
	tsNodeNewExpression        = "new_expression"
	tsNodeMemberExpression     = "member_expression"
	tsNodeParenthesized        = "parenthesized_expression"
	tsNodeIdentifier           = "identifier"
	tsNodeThis                 = "this"

	// Literal nodes
	tsNodeString         = "string"
	tsNodeTemplateString = "template_string"
	tsNodeNumber         = "number"
	tsNodeTrue           = "true"
	tsNodeFalse          = "false"
	tsNodeNull           = "null"
	tsNodeRegex          = "regex"

	// Comments and keyword tokens
	tsNodeComment = "comment"
	tsNodeAsync   = "async"
	tsNodeStatic  = "static"
	tsNodeDefault = "default"
	tsNodeGet     = "get"
	tsNodeSet     = "set"
	tsNodeStar    = "*"
	tsNodeVar     = "var"
	tsNodeLet     = "let"
	tsNodeConst   = "const"
	tsNodeFrom    = "from"
)

// Adapter shape mapping, for reference during maintenance:
//
//	program                         -> KindProgram
//	export_statement                -> KindExportDefaultDeclaration (has `default` token)
//	                                   KindExportNamedDeclaration   (declaration or clause)
//	                                   KindExportAllDeclaration     (`*` re-export)
//	class_declaration               -> KindClassDeclaration
//	class (expression position)     -> KindClassExpression
//	method_definition               -> KindClassMethod (get/set/constructor via tokens)
//	field_definition                -> KindClassProperty
//	function_declaration            -> KindFunctionDeclaration
//	generator_function_declaration  -> KindFunctionDeclaration (Generator=true)
//	function_expression             -> KindFunctionExpression
//	generator_function              -> KindFunctionExpression (Generator=true)
//	arrow_function                  -> KindArrowFunctionExpression
//	lexical_declaration             -> KindVariableDeclaration (let/const)
//	variable_declaration            -> KindVariableDeclaration (var)
//	variable_declarator             -> KindVariableDeclarator
//	expression_statement            -> KindExpressionStatement
//	assignment_expression           -> KindAssignmentExpression
//	new_expression                  -> KindNewExpression
//	call_expression                 -> KindCallExpression
//	member_expression               -> KindMemberExpression
//	identifier / property_identifier-> KindIdentifier
//	this                            -> KindThisExpression
//	string/number/true/false/null   -> KindLiteral
//	object_pattern                  -> KindObjectPattern
//	assignment_pattern              -> KindAssignmentPattern
//	rest_pattern                    -> KindRestElement
//	return_statement                -> KindReturnStatement
//	decorator                       -> KindDecorator
//	anything else                   -> KindOther (children preserved)
