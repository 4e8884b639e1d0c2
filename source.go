package dshow

import (
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"sync"

	"golang.org/x/tools/go/ast/inspector"
)

const unknownExpr = "?"

type _SourceFile struct {
	fset      *token.FileSet
	src       []byte
	inspector *inspector.Inspector
	err       error
}

// file name -> *_SourceFile
var sourceFiles sync.Map

func loadSourceFile(filename string) *_SourceFile {
	if v, ok := sourceFiles.Load(filename); ok {
		return v.(*_SourceFile)
	}
	file := new(_SourceFile)
	file.src, file.err = os.ReadFile(filename)
	if file.err == nil {
		file.fset = token.NewFileSet()
		var f *ast.File
		f, file.err = parser.ParseFile(file.fset, filename, file.src, parser.SkipObjectResolution)
		if file.err == nil {
			file.inspector = inspector.New([]*ast.File{f})
		}
	}
	v, _ := sourceFiles.LoadOrStore(filename, file)
	return v.(*_SourceFile)
}

type _CallKey struct {
	Site   Site
	Callee string
	Offset int
	N      int
}

// _CallKey -> []string
var exprTexts sync.Map

// argTexts returns the source text of n arguments, starting at offset, of the call
// to callee at site. It returns nil if the call cannot be located unambiguously.
func argTexts(site Site, callee string, offset int, n int) []string {
	key := _CallKey{
		Site:   site,
		Callee: callee,
		Offset: offset,
		N:      n,
	}
	if v, ok := exprTexts.Load(key); ok {
		return v.([]string)
	}
	texts := findArgTexts(site, callee, offset, n)
	exprTexts.Store(key, texts)
	return texts
}

func findArgTexts(site Site, callee string, offset int, n int) []string {
	file := loadSourceFile(site.File)
	if file.err != nil {
		return nil
	}

	// calls to callee spanning the line
	var spanning []*ast.CallExpr
	file.inspector.Preorder([]ast.Node{
		(*ast.CallExpr)(nil),
	}, func(node ast.Node) {
		call := node.(*ast.CallExpr)
		if calleeName(call.Fun) != callee {
			return
		}
		if file.fset.Position(call.Pos()).Line > site.Line ||
			file.fset.Position(call.End()).Line < site.Line {
			return
		}
		spanning = append(spanning, call)
	})
	found := pickCall(file.fset, spanning, site.Line)
	if found == nil ||
		found.Ellipsis.IsValid() ||
		len(found.Args) != offset+n {
		return nil
	}

	texts := make([]string, 0, n)
	for _, arg := range found.Args[offset:] {
		start := file.fset.Position(arg.Pos()).Offset
		end := file.fset.Position(arg.End()).Offset
		texts = append(texts, string(file.src[start:end]))
	}
	return texts
}

// pickCall returns the only candidate, or the only one starting on line.
// Nested or same-line calls are ambiguous since the runtime reports lines only.
func pickCall(fset *token.FileSet, calls []*ast.CallExpr, line int) *ast.CallExpr {
	if len(calls) == 1 {
		return calls[0]
	}
	var found *ast.CallExpr
	for _, call := range calls {
		if fset.Position(call.Pos()).Line != line {
			continue
		}
		if found != nil {
			return nil
		}
		found = call
	}
	return found
}

func calleeName(fun ast.Expr) string {
	for {
		switch f := fun.(type) {
		case *ast.ParenExpr:
			fun = f.X
		case *ast.IndexExpr:
			fun = f.X
		case *ast.IndexListExpr:
			fun = f.X
		case *ast.SelectorExpr:
			return f.Sel.Name
		case *ast.Ident:
			return f.Name
		default:
			return ""
		}
	}
}
