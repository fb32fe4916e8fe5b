package chunk

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// nodeTypeSet maps a language's AST node type names to the Chunk Type
// they represent.
type nodeTypeSet map[string]Type

// langDef bundles a tree-sitter grammar with the node types that count
// as semantic chunk boundaries for that language.
type langDef struct {
	grammar   *sitter.Language
	nodeTypes nodeTypeSet
}

var registry = map[string]langDef{
	"go": {
		grammar: golang.GetLanguage(),
		nodeTypes: nodeTypeSet{
			"function_declaration": TypeFunction,
			"method_declaration":   TypeMethod,
			"type_declaration":     TypeClass,
		},
	},
	"python": {
		grammar: python.GetLanguage(),
		nodeTypes: nodeTypeSet{
			"function_definition": TypeFunction,
			"class_definition":    TypeClass,
		},
	},
	"javascript": {
		grammar: javascript.GetLanguage(),
		nodeTypes: nodeTypeSet{
			"function_declaration": TypeFunction,
			"function_expression":  TypeFunction,
			"arrow_function":       TypeFunction,
			"method_definition":    TypeMethod,
			"class_declaration":    TypeClass,
		},
	},
	"typescript": {
		grammar: typescript.GetLanguage(),
		nodeTypes: nodeTypeSet{
			"function_declaration":  TypeFunction,
			"function_expression":   TypeFunction,
			"arrow_function":        TypeFunction,
			"method_definition":     TypeMethod,
			"class_declaration":     TypeClass,
			"interface_declaration": TypeClass,
		},
	},
	"tsx": {
		grammar: tsx.GetLanguage(),
		nodeTypes: nodeTypeSet{
			"function_declaration":  TypeFunction,
			"function_expression":   TypeFunction,
			"arrow_function":        TypeFunction,
			"method_definition":     TypeMethod,
			"class_declaration":     TypeClass,
			"interface_declaration": TypeClass,
		},
	},
	"rust": {
		grammar: rust.GetLanguage(),
		nodeTypes: nodeTypeSet{
			"function_item": TypeFunction,
			"impl_item":     TypeClass,
			"struct_item":   TypeClass,
			"trait_item":    TypeClass,
			"enum_item":     TypeClass,
		},
	},
	"java": {
		grammar: java.GetLanguage(),
		nodeTypes: nodeTypeSet{
			"method_declaration":      TypeMethod,
			"constructor_declaration": TypeMethod,
			"class_declaration":       TypeClass,
			"interface_declaration":   TypeClass,
			"enum_declaration":        TypeClass,
		},
	},
	"c": {
		grammar: c.GetLanguage(),
		nodeTypes: nodeTypeSet{
			"function_definition": TypeFunction,
			"struct_specifier":    TypeClass,
			"enum_specifier":      TypeClass,
		},
	},
	"cpp": {
		grammar: cpp.GetLanguage(),
		nodeTypes: nodeTypeSet{
			"function_definition":  TypeFunction,
			"struct_specifier":     TypeClass,
			"class_specifier":      TypeClass,
			"namespace_definition": TypeClass,
		},
	},
}

// grammarFor returns the tree-sitter grammar and semantic node set for
// a language tag, or ok=false if no grammar is registered (the caller
// falls back to the text chunker).
func grammarFor(language string) (langDef, bool) {
	def, ok := registry[language]
	return def, ok
}
