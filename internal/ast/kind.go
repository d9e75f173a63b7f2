package ast

// Kind classifies a node. Grammar kinds without a dedicated Kind lower to KindOther.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindOther

	// declarations
	KindSourceFile
	KindPackageClause
	KindImportDecl
	KindImportSpecList
	KindImportSpec
	KindFuncDecl
	KindMethodDecl
	KindParameterList
	KindParameterDecl
	KindVariadicParameterDecl
	KindTypeParameterList
	KindTypeParameterDecl
	KindVarDecl
	KindVarSpecList
	KindVarSpec
	KindConstDecl
	KindConstSpec
	KindTypeDecl
	KindTypeSpec
	KindTypeAlias
	KindFieldDecl
	KindMethodElem

	// statements
	KindBlock
	KindStatementList
	KindShortVarDecl
	KindAssignment
	KindIf
	KindFor
	KindForClause
	KindRangeClause
	KindExprSwitch
	KindTypeSwitch
	KindSelect
	KindExprCase
	KindTypeCase
	KindDefaultCase
	KindCommCase
	KindLabeled
	KindReturn
	KindGo
	KindDefer
	KindIncDec
	KindSend
	KindReceive
	KindGoto
	KindBreak
	KindContinue

	// expressions
	KindIdentifier
	KindTypeIdentifier
	KindFieldIdentifier
	KindPackageIdentifier
	KindLabelName
	KindBlankIdentifier
	KindDot
	KindExpressionList
	KindSelector
	KindQualifiedType
	KindCall
	KindArgumentList
	KindFuncLiteral
	KindCompositeLiteral
	KindLiteralValue
	KindKeyedElement
	KindLiteralElement
	KindRawString
	KindInterpretedString
	KindStructType
	KindInterfaceType
	KindComment

	// recovery
	KindError
	KindMissing
)

var grammarKinds = map[string]Kind{
	"source_file":                    KindSourceFile,
	"package_clause":                 KindPackageClause,
	"import_declaration":             KindImportDecl,
	"import_spec_list":               KindImportSpecList,
	"import_spec":                    KindImportSpec,
	"function_declaration":           KindFuncDecl,
	"method_declaration":             KindMethodDecl,
	"parameter_list":                 KindParameterList,
	"parameter_declaration":          KindParameterDecl,
	"variadic_parameter_declaration": KindVariadicParameterDecl,
	"type_parameter_list":            KindTypeParameterList,
	"type_parameter_declaration":     KindTypeParameterDecl,
	"var_declaration":                KindVarDecl,
	"var_spec_list":                  KindVarSpecList,
	"var_spec":                       KindVarSpec,
	"const_declaration":              KindConstDecl,
	"const_spec":                     KindConstSpec,
	"type_declaration":               KindTypeDecl,
	"type_spec":                      KindTypeSpec,
	"type_alias":                     KindTypeAlias,
	"field_declaration":              KindFieldDecl,
	"method_elem":                    KindMethodElem,
	"method_spec":                    KindMethodElem,
	"block":                          KindBlock,
	"statement_list":                 KindStatementList,
	"short_var_declaration":          KindShortVarDecl,
	"assignment_statement":           KindAssignment,
	"if_statement":                   KindIf,
	"for_statement":                  KindFor,
	"for_clause":                     KindForClause,
	"range_clause":                   KindRangeClause,
	"expression_switch_statement":    KindExprSwitch,
	"type_switch_statement":          KindTypeSwitch,
	"select_statement":               KindSelect,
	"expression_case":                KindExprCase,
	"type_case":                      KindTypeCase,
	"default_case":                   KindDefaultCase,
	"communication_case":             KindCommCase,
	"labeled_statement":              KindLabeled,
	"return_statement":               KindReturn,
	"go_statement":                   KindGo,
	"defer_statement":                KindDefer,
	"inc_statement":                  KindIncDec,
	"dec_statement":                  KindIncDec,
	"send_statement":                 KindSend,
	"receive_statement":              KindReceive,
	"goto_statement":                 KindGoto,
	"break_statement":                KindBreak,
	"continue_statement":             KindContinue,
	"identifier":                     KindIdentifier,
	"type_identifier":                KindTypeIdentifier,
	"field_identifier":               KindFieldIdentifier,
	"package_identifier":             KindPackageIdentifier,
	"label_name":                     KindLabelName,
	"blank_identifier":               KindBlankIdentifier,
	"dot":                            KindDot,
	"expression_list":                KindExpressionList,
	"selector_expression":            KindSelector,
	"qualified_type":                 KindQualifiedType,
	"call_expression":                KindCall,
	"argument_list":                  KindArgumentList,
	"func_literal":                   KindFuncLiteral,
	"composite_literal":              KindCompositeLiteral,
	"literal_value":                  KindLiteralValue,
	"keyed_element":                  KindKeyedElement,
	"literal_element":                KindLiteralElement,
	"raw_string_literal":             KindRawString,
	"interpreted_string_literal":     KindInterpretedString,
	"struct_type":                    KindStructType,
	"interface_type":                 KindInterfaceType,
	"comment":                        KindComment,
	"ERROR":                          KindError,
}

// KindOf maps a tree-sitter-go node type to a Kind.
func KindOf(grammarKind string) Kind {
	if k, ok := grammarKinds[grammarKind]; ok {
		return k
	}
	return KindOther
}

var kindNames = func() map[Kind]string {
	m := make(map[Kind]string, len(grammarKinds)+3)
	for name, k := range grammarKinds {
		if prev, ok := m[k]; !ok || name < prev {
			m[k] = name
		}
	}
	m[KindInvalid] = "invalid"
	m[KindOther] = "other"
	m[KindMissing] = "MISSING"
	return m
}()

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// IsIdent reports whether k is one of the identifier flavours.
func (k Kind) IsIdent() bool {
	switch k {
	case KindIdentifier, KindTypeIdentifier, KindFieldIdentifier,
		KindPackageIdentifier, KindLabelName, KindBlankIdentifier:
		return true
	}
	return false
}

// IsFuncLike reports whether k opens a function body scope.
func (k Kind) IsFuncLike() bool {
	return k == KindFuncDecl || k == KindMethodDecl || k == KindFuncLiteral
}

// Field is the grammar field a node fills in its parent.
type Field uint8

const (
	FieldNone Field = iota
	FieldName
	FieldType
	FieldValue
	FieldLeft
	FieldRight
	FieldBody
	FieldOperand
	FieldField
	FieldPackage
	FieldReceiver
	FieldParameters
	FieldTypeParameters
	FieldTypeArguments
	FieldResult
	FieldAlias
	FieldPath
	FieldLabel
	FieldFunction
	FieldArguments
	FieldKey
	FieldInitializer
	FieldUpdate
	FieldCondition
	FieldConsequence
	FieldAlternative
	FieldCommunication
	FieldTag
	FieldOperator
	FieldIndex
	FieldElement
)

var grammarFields = map[string]Field{
	"name":            FieldName,
	"type":            FieldType,
	"value":           FieldValue,
	"left":            FieldLeft,
	"right":           FieldRight,
	"body":            FieldBody,
	"operand":         FieldOperand,
	"field":           FieldField,
	"package":         FieldPackage,
	"receiver":        FieldReceiver,
	"parameters":      FieldParameters,
	"type_parameters": FieldTypeParameters,
	"type_arguments":  FieldTypeArguments,
	"result":          FieldResult,
	"alias":           FieldAlias,
	"path":            FieldPath,
	"label":           FieldLabel,
	"function":        FieldFunction,
	"arguments":       FieldArguments,
	"key":             FieldKey,
	"initializer":     FieldInitializer,
	"update":          FieldUpdate,
	"condition":       FieldCondition,
	"consequence":     FieldConsequence,
	"alternative":     FieldAlternative,
	"communication":   FieldCommunication,
	"tag":             FieldTag,
	"operator":        FieldOperator,
	"index":           FieldIndex,
	"element":         FieldElement,
}

// FieldOf maps a tree-sitter field name to a Field.
func FieldOf(name string) Field {
	return grammarFields[name]
}
