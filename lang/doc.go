// Package lang implements the front end of the build description language:
// a lexer that never fails and a recursive-descent parser that produces an
// [AST] of statements and expressions.
//
// # Grammar
//
// Informal EBNF:
//
//	Program    → Statement* EOF
//	Statement  → ( Assignment | Expression | Break | Continue ) End
//	           | If | Foreach
//	Assignment → Identifier ( '=' | '+=' ) Expression
//	If         → 'if' Expression End Statement*
//	             ( 'elif' Expression End Statement* )*
//	             ( 'else' End Statement* )? 'endif' End
//	Foreach    → 'foreach' Identifier ':' Expression End Statement*
//	             'endforeach' End
//	End        → Newline | EOF
//
// Expressions, lowest precedence first:
//
//	Ternary    → Or ( '?' Expression ':' Expression )?
//	Or         → And ( 'or' And )*
//	And        → In ( 'and' In )*
//	In         → Equality ( ( 'in' | 'not' 'in' ) Equality )?
//	Equality   → Relational ( ( '==' | '!=' ) Relational )*
//	Relational → Additive ( ( '<' | '<=' | '>' | '>=' ) Additive )*
//	Additive   → Term ( ( '+' | '-' ) Term )*
//	Term       → Unary ( ( '*' | '/' | '%' ) Unary )*
//	Unary      → ( 'not' | '-' ) Unary | Postfix
//	Postfix    → Primary ( Call | '[' Expression ']' | '.' Identifier Call? )*
//	Primary    → String | FString | Integer | 'true' | 'false' | Identifier
//	           | '(' Expression ')' | '[' List? ']' | '{' Entries? '}'
//
// A call is only allowed on an identifier (a function call) or directly after
// a method name. Positional arguments must precede keyword arguments.
//
// # Newlines
//
// Lookahead skips newline tokens, so an expression may continue on the next
// line after an operator or inside brackets. A statement must still end at a
// newline or at end of input. Comments end the line they appear on.
//
// # Caching
//
// [ParseReader] caches parse results by a hash of the source text, so
// repeatedly loaded scripts are parsed once per process. Use [ClearCache]
// to reset it.
package lang
