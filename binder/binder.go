// Package binder orchestrates the seven-pass pipeline (spec.md §2's data
// flow) into the single external contract described in spec.md §6: parsed
// compilation units plus ordered bootclasspath/classpath archive sequences
// in, a mapping from source ClassSymbol to its final Bound form out. It
// plays the same "wire the pieces together, collect failures onto a result"
// role analyzer.Analyzer plays over its own inspector passes
// (analyzer/analyzer.go).
package binder

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/viant/afs"

	"github.com/viant/javabind/ast"
	"github.com/viant/javabind/classfile"
	"github.com/viant/javabind/diag"
	"github.com/viant/javabind/index"
	"github.com/viant/javabind/pass/canon"
	"github.com/viant/javabind/pass/constant"
	"github.com/viant/javabind/pass/hierarchy"
	"github.com/viant/javabind/pass/packagebound"
	"github.com/viant/javabind/pass/sourcebound"
	"github.com/viant/javabind/pass/typeanno"
	"github.com/viant/javabind/pass/typepass"
	"github.com/viant/javabind/symbol"
)

// rootNames are the canonical binary names of the language's built-in root
// types, resolved against whatever bootclasspath archives the caller
// supplies (spec.md §4.5's "object root, enum root, annotation root
// interface ... typically live on the bootclasspath").
const (
	objectRootName     = "lang/Object"
	enumRootName       = "lang/Enum"
	annotationRootName = "lang/annotation/Annotation"
)

// Bindings is the pipeline's output: the final Bound-stage class for every
// source class symbol, the retained classpath environment for downstream
// lowering, and every diagnostic raised along the way.
type Bindings struct {
	Classes      map[string]*canon.Class
	ClasspathEnv *classfile.Binder
	Sink         *diag.Sink

	close func() error
}

// Close is a no-op: each archive is downloaded whole while Bind runs, and
// no archive handle stays open in the result.
func (b *Bindings) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Options configures one binding run.
type Options struct {
	BootClasspath []string
	Classpath     []string
	FS            afs.Service // nil defaults to afs.New()
}

// Bind runs the full pipeline over units, returning the Bound-stage
// result. Order matters: every symbol category (source, boot, classpath)
// must be inserted into the shared TopLevelIndex before PackageBoundPass
// builds any unit's scope.Stack, per spec.md §4.2's "callers must insert
// in priority order".
func Bind(ctx context.Context, units []*ast.CompUnit, opts Options) (*Bindings, error) {
	fs := opts.FS
	if fs == nil {
		fs = afs.New()
	}

	table := symbol.NewTable()
	idx := index.New()

	log.Debug().Int("units", len(units)).Msg("sourcebound: allocating source symbols")
	sb := sourcebound.New(table, idx).Run(units)

	cpBinder := classfile.NewBinder(classfile.NewReaderWithService(fs), table)
	if len(opts.BootClasspath) > 0 {
		log.Debug().Strs("archives", opts.BootClasspath).Msg("binding bootclasspath")
		if err := cpBinder.Bind(ctx, idx, opts.BootClasspath, symbol.Boot); err != nil {
			return nil, fmt.Errorf("binder: %w", err)
		}
	}
	if len(opts.Classpath) > 0 {
		log.Debug().Strs("archives", opts.Classpath).Msg("binding classpath")
		if err := cpBinder.Bind(ctx, idx, opts.Classpath, symbol.Classpath); err != nil {
			return nil, fmt.Errorf("binder: %w", err)
		}
	}

	sink := diag.NewSink()

	pb := packagebound.New(idx, sink).Run(sb)

	roots := rootProvider(table, idx)
	hr := hierarchy.New(roots, sink).Run(pb, nil)

	tp := typepass.New(hr, sink).Run()

	cp := constant.New(tp, cpBinder, stringRootSymbol(table, idx), sink)
	cr := cp.Run()

	targets := newTargetProvider(tp, cpBinder)
	ta := typeanno.New(targets, sink).Run(tp)

	classes := canon.New(table, cr, ta, cp).Run(tp)

	if sink.HasErrors() {
		log.Warn().Int("diagnostics", len(sink.Items())).Msg("binding completed with diagnostics")
	}

	return &Bindings{
		Classes:      classes.Classes,
		ClasspathEnv: cpBinder,
		Sink:         sink,
		close:        func() error { return nil },
	}, nil
}

// rootProvider resolves the language's root types against idx, falling
// back to a synthetic boot symbol (so the pipeline still runs over fixture
// data that doesn't itself declare the root types).
func rootProvider(table *symbol.Table, idx *index.TopLevelIndex) hierarchy.RootProvider {
	return hierarchy.RootProvider{
		ObjectRoot:     resolveOrSynthesize(table, idx, objectRootName),
		EnumRoot:       resolveOrSynthesize(table, idx, enumRootName),
		AnnotationRoot: resolveOrSynthesize(table, idx, annotationRootName),
	}
}

// stringRootSymbol resolves the language's string type, used by
// ConstantEvaluator to recognize string-typed constant fields.
func stringRootSymbol(table *symbol.Table, idx *index.TopLevelIndex) *symbol.ClassSymbol {
	return resolveOrSynthesize(table, idx, "lang/String")
}

func resolveOrSynthesize(table *symbol.Table, idx *index.TopLevelIndex, name string) *symbol.ClassSymbol {
	if sym, ok := table.Lookup(name); ok {
		return sym
	}
	sym := table.Intern(name, symbol.Boot)
	idx.Insert(sym)
	return sym
}
