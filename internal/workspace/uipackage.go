package workspace

import (
	"os"
	"path/filepath"
)

// writeInjectedUIPackage materializes the @nodebooks/ui helper package
// on disk (spec.md §4.1, §6) so that the sandbox's node_modules tree
// looks complete to anything that inspects it (a user `ls
// node_modules`, a bundler's manifest scan). At runtime the Module
// Resolver & Policy Gate (internal/policy) never reads these files: it
// intercepts the exact specifier "@nodebooks/ui" and returns the
// native Go-backed module before falling through to disk resolution,
// per spec.md §4.3. These files exist for filesystem-shape fidelity
// and as the type declarations a user's editor would see.
func writeInjectedUIPackage(nodeModulesDir string) error {
	pkgDir := filepath.Join(nodeModulesDir, injectedPackageName)
	if err := os.MkdirAll(pkgDir, 0o755); err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(pkgDir, "package.json"), []byte(uiPackageJSON), 0o644); err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(pkgDir, "index.js"), []byte(uiPackageIndexJS), 0o644); err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(pkgDir, "index.d.ts"), []byte(uiPackageIndexDTS), 0o644)
}

const uiPackageJSON = `{
  "name": "@nodebooks/ui",
  "version": "0.0.0",
  "private": true,
  "main": "index.js",
  "types": "index.d.ts"
}
`

// uiPackageIndexJS is never actually loaded by the sandboxed runtime
// (the policy gate substitutes the native module first); it documents
// the shape a user inspecting node_modules would see.
const uiPackageIndexJS = `// Provided by the kernel at runtime; this file only documents the
// shape of the module for tools that read node_modules directly.
module.exports = require('@nodebooks/ui/native');
`

const uiPackageIndexDTS = `export type UIValue = { readonly __nodebooksUI: true };
export function text(value: string): UIValue;
export function markdown(text: string): UIValue;
export function html(markup: string): UIValue;
export function json(value: unknown): UIValue;
export function table(opts: { columns: string[]; rows: unknown[][] }): UIValue;
export function dataSummary(opts: Record<string, unknown>): UIValue;
export function image(opts: { src: string; alt?: string }): UIValue;
export function vegaLite(opts: Record<string, unknown>): UIValue;
export function plotly(opts: Record<string, unknown>): UIValue;
export function heatmap(opts: Record<string, unknown>): UIValue;
export function network(opts: { nodes: unknown[]; edges: unknown[] }): UIValue;
export function plot3d(opts: Record<string, unknown>): UIValue;
export function map(opts: Record<string, unknown>): UIValue;
export function geojson(opts: Record<string, unknown>): UIValue;
export function alert(opts: { level?: 'info' | 'warn' | 'error'; title?: string; text: string }): UIValue;
export function badge(opts: { text: string; color?: string }): UIValue;
export function metric(opts: { label: string; value: number | string }): UIValue;
export function progress(opts: { value: number; max?: number }): UIValue;
export function spinner(opts: { label?: string }): UIValue;
export function container(opts: { children: UIValue[] }): UIValue;
export function button(opts: { label: string; onEvent?: (event: unknown) => void }): UIValue;
export function slider(opts: { value: number; min: number; max: number; onEvent?: (event: unknown) => void }): UIValue;
export function textInput(opts: { value?: string; placeholder?: string; onEvent?: (event: unknown) => void }): UIValue;
export function display(value: UIValue): string;
export function updateDisplay(displayId: string, value: UIValue): string;
`
