package transform

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodebooks/kernel/internal/model"
)

func TestTransformPromotesDeclarationAcrossCells(t *testing.T) {
	out1, err := Transform("const x = [1,2,3]; x;", model.LanguageJS)
	require.NoError(t, err)
	assert.Contains(t, out1, "globalThis.x")
	assert.Contains(t, out1, "RESULT = (x)")

	out2, err := Transform("x.push(4); x;", model.LanguageJS)
	require.NoError(t, err)
	assert.Contains(t, out2, "RESULT = (x)")
	assert.NotContains(t, out2, "globalThis.x")
}

func TestTransformPromotesFunctionDeclaration(t *testing.T) {
	out, err := Transform("function add(a, b) { return a + b; }\nadd(1, 2);", model.LanguageJS)
	require.NoError(t, err)
	assert.Contains(t, out, "globalThis.add = function add(a, b)")
	assert.Contains(t, out, "RESULT = (add(1, 2))")
}

func TestTransformPromotesAsyncGeneratorFunction(t *testing.T) {
	out, err := Transform("async function* gen() { yield 1; }", model.LanguageJS)
	require.NoError(t, err)
	assert.Contains(t, out, "globalThis.gen = async function* gen()")
}

func TestTransformPromotesClassDeclaration(t *testing.T) {
	out, err := Transform("class Box { constructor(v) { this.v = v; } }", model.LanguageJS)
	require.NoError(t, err)
	assert.Contains(t, out, "globalThis.Box = class Box")
}

func TestTransformSkipsMultiDeclaratorStatement(t *testing.T) {
	out, err := Transform("const a = 1, b = 2; a + b;", model.LanguageJS)
	require.NoError(t, err)
	assert.NotContains(t, out, "globalThis.a")
	assert.Contains(t, out, "const a = 1, b = 2;")
}

func TestTransformTSSuppressesCaptureForCallExpressions(t *testing.T) {
	out, err := Transform("const add = (a: number, b: number) => a + b; add(1,2);", model.LanguageTS)
	require.NoError(t, err)
	assert.NotContains(t, out, "RESULT")
	assert.Contains(t, out, "globalThis.add")
}

func TestTransformTSCapturesBareIdentifier(t *testing.T) {
	out, err := Transform("const total: number = 7;\ntotal;", model.LanguageTS)
	require.NoError(t, err)
	assert.Contains(t, out, "RESULT = (total)")
}

func TestTransformTSStripsParamAndReturnTypes(t *testing.T) {
	out, err := Transform("function add(a: number, b: number): number { return a + b; }", model.LanguageTS)
	require.NoError(t, err)
	assert.NotContains(t, out, ": number")
	assert.Contains(t, out, "globalThis.add = function add(a, b)")
}

func TestTransformTSDropsInterfaceAndTypeAlias(t *testing.T) {
	out, err := Transform("interface Point { x: number; y: number; }\ntype ID = string;\nconst ready = true;\nready;", model.LanguageTS)
	require.NoError(t, err)
	assert.False(t, strings.Contains(out, "interface"))
	assert.Contains(t, out, "RESULT = (ready)")
}

func TestTransformTSStripsAsAndNonNull(t *testing.T) {
	out, err := Transform("const v = (x as number) + y!.length;", model.LanguageTS)
	require.NoError(t, err)
	assert.NotContains(t, out, " as ")
	assert.NotContains(t, out, "y!.")
}

func TestTransformJSFallsBackOnGenericArrowAmbiguity(t *testing.T) {
	out, err := Transform("<T>(1)", model.LanguageJS)
	require.NoError(t, err)
	assert.Contains(t, out, "return (<T>(1));")
	assert.NotContains(t, out, "RESULT")
}

func TestTransformHoistsImportsAheadOfAsyncScope(t *testing.T) {
	out, err := Transform("import { z } from 'zod';\nconst v = z.string();\nv;", model.LanguageJS)
	require.NoError(t, err)
	importIdx := strings.Index(out, "import { z }")
	scopeIdx := strings.Index(out, "(async () => {")
	require.GreaterOrEqual(t, importIdx, 0)
	require.GreaterOrEqual(t, scopeIdx, 0)
	assert.Less(t, importIdx, scopeIdx)
}

func TestTransformNoCaptureForControlFlowLastStatement(t *testing.T) {
	out, err := Transform("console.log('hi');\nif (true) { console.log('no capture'); }", model.LanguageJS)
	require.NoError(t, err)
	assert.Contains(t, out, "RESULT = (console.log('hi'))")
}
