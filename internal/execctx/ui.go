package execctx

import (
	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/require"

	"github.com/nodebooks/kernel/internal/display"
)

// uiModuleLoader builds the @nodebooks/ui injected helper package
// (spec.md §4.1, §6, §4.10): plain display-value constructors for
// every documented component kind (text, markdown, html, json, table,
// dataSummary, image, vegaLite, plotly, heatmap, network, plot3d, map,
// geojson, alert, badge, metric, progress, spinner, container), plus
// the three interactive ones (button/slider/textInput) which register
// their onEvent callback with the Interaction Dispatcher and embed the
// resulting handler id under action.handlerId, and the
// display()/updateDisplay() functions that invoke the context's
// streaming hooks directly.
func uiModuleLoader(c *Context) require.ModuleLoader {
	return func(vm *goja.Runtime, module *goja.Object) {
		exports := vm.NewObject()

		value := func(ui string, fields map[string]interface{}) *goja.Object {
			obj := vm.NewObject()
			_ = obj.Set(display.UIMarkerKey, true)
			_ = obj.Set("ui", ui)
			for k, v := range fields {
				_ = obj.Set(k, v)
			}
			return obj
		}

		_ = exports.Set("text", func(call goja.FunctionCall) goja.Value {
			return value("text", map[string]interface{}{"text": arg(call, 0).String()})
		})
		_ = exports.Set("markdown", func(call goja.FunctionCall) goja.Value {
			return value("markdown", map[string]interface{}{"text": arg(call, 0).String()})
		})
		_ = exports.Set("html", func(call goja.FunctionCall) goja.Value {
			return value("html", map[string]interface{}{"markup": arg(call, 0).String()})
		})
		_ = exports.Set("json", func(call goja.FunctionCall) goja.Value {
			return value("json", map[string]interface{}{"json": arg(call, 0).Export()})
		})

		// optsValue builds a UI component from a single options-object
		// argument, the shape every remaining non-interactive helper below
		// shares, unlike markdown/html/json/text's single scalar argument.
		optsValue := func(ui string) func(goja.FunctionCall) goja.Value {
			return func(call goja.FunctionCall) goja.Value {
				opts, _ := arg(call, 0).Export().(map[string]interface{})
				return value(ui, opts)
			}
		}
		_ = exports.Set("alert", optsValue("alert"))
		_ = exports.Set("badge", optsValue("badge"))
		_ = exports.Set("metric", optsValue("metric"))
		_ = exports.Set("progress", optsValue("progress"))
		_ = exports.Set("spinner", optsValue("spinner"))
		_ = exports.Set("table", optsValue("table"))
		_ = exports.Set("dataSummary", optsValue("dataSummary"))
		_ = exports.Set("image", optsValue("image"))
		_ = exports.Set("vegaLite", optsValue("vegaLite"))
		_ = exports.Set("plotly", optsValue("plotly"))
		_ = exports.Set("heatmap", optsValue("heatmap"))
		_ = exports.Set("network", optsValue("network"))
		_ = exports.Set("plot3d", optsValue("plot3d"))
		_ = exports.Set("map", optsValue("map"))
		_ = exports.Set("geojson", optsValue("geojson"))
		_ = exports.Set("container", optsValue("container"))

		interactive := func(ui string) func(goja.FunctionCall) goja.Value {
			return func(call goja.FunctionCall) goja.Value {
				opts, _ := arg(call, 0).Export().(map[string]interface{})
				fields := map[string]interface{}{}
				for k, v := range opts {
					if k == "onEvent" {
						continue
					}
					fields[k] = v
				}
				if cb, ok := goja.AssertFunction(arg(call, 0).ToObject(vm).Get("onEvent")); ok {
					handlerID := c.RegisterHandler(cb)
					fields["action"] = map[string]interface{}{"handlerId": handlerID}
				}
				return value(ui, fields)
			}
		}
		_ = exports.Set("button", interactive("button"))
		_ = exports.Set("slider", interactive("slider"))
		_ = exports.Set("textInput", interactive("textInput"))

		_ = exports.Set("display", func(call goja.FunctionCall) goja.Value {
			hook, _ := goja.AssertFunction(vm.Get("__display"))
			result, _ := hook(goja.Undefined(), arg(call, 0))
			return result
		})
		_ = exports.Set("updateDisplay", func(call goja.FunctionCall) goja.Value {
			hook, _ := goja.AssertFunction(vm.Get("__update_display"))
			result, _ := hook(goja.Undefined(), arg(call, 0), arg(call, 1))
			return result
		})

		_ = module.Set("exports", exports)
	}
}
