package main

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"path/filepath"

	"golang.org/x/tools/go/ssa"
)

// program loads a single directory's package and builds its SSA form,
// following the same manual parse-then-typecheck-then-build sequence as
// a compiler frontend walking a package graph: parser.ParseDir for syntax,
// types.NewChecker for the type-checked go/types.Info, then
// ssa.NewProgram/CreatePackage/Build for the SSA form gcmeta-gen actually
// walks. Imported packages are resolved with go/importer's source
// importer rather than a hand-rolled one, since gcmeta-gen has no
// target-specific search path to apply beyond ordinary Go import
// resolution.
type program struct {
	fset    *token.FileSet
	config  *types.Config
	path    string
	mainPkg *types.Package
	files   []*ast.File

	ssaPkg *ssa.Package
}

func newProgram(path string) *program {
	fset := token.NewFileSet()
	return &program{
		fset:   fset,
		path:   path,
		config: &types.Config{Importer: importer.ForCompiler(fset, "source", nil)},
	}
}

func (p *program) parse() error {
	packages, err := parser.ParseDir(p.fset, p.path, nil, parser.ParseComments)
	if err != nil {
		return err
	}
	if len(packages) == 0 {
		return ErrNoPackage
	}
	if len(packages) > 1 {
		return ErrMultiplePackages
	}

	for name, pkg := range packages {
		p.mainPkg = types.NewPackage(filepath.Base(p.path), name)
		for _, file := range pkg.Files {
			p.files = append(p.files, file)
		}
	}
	return nil
}

func (p *program) build() error {
	mode := ssa.SanityCheckFunctions | ssa.BareInits | ssa.GlobalDebug

	info := &types.Info{
		Types:      make(map[ast.Expr]types.TypeAndValue),
		Defs:       make(map[*ast.Ident]types.Object),
		Uses:       make(map[*ast.Ident]types.Object),
		Implicits:  make(map[ast.Node]types.Object),
		Scopes:     make(map[ast.Node]*types.Scope),
		Selections: make(map[*ast.SelectorExpr]*types.Selection),
	}

	if err := types.NewChecker(p.config, p.fset, p.mainPkg, info).Files(p.files); err != nil {
		return err
	}

	prog := ssa.NewProgram(p.fset, mode)

	created := make(map[*types.Package]bool)
	var createAll func(pkg *types.Package)
	createAll = func(pkg *types.Package) {
		for _, imported := range pkg.Imports() {
			if created[imported] {
				continue
			}
			created[imported] = true
			// Imported packages are created import-only: gcmeta-gen never
			// needs their SSA bodies, only the exported types the main
			// package's signatures and field layouts refer to.
			prog.CreatePackage(imported, nil, nil, true)
			createAll(imported)
		}
	}
	createAll(p.mainPkg)

	p.ssaPkg = prog.CreatePackage(p.mainPkg, p.files, info, false)
	prog.Build()
	return nil
}
