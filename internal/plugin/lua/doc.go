// Package lua runs user plugin scripts in a sandboxed gopher-lua state.
//
// Scripts see the safe subset of the Lua standard library (base, table,
// string, math) plus an indentglow module:
//
//	indentglow.register_language(".rvi", "rivet")
//	indentglow.set_color(1, "rgba(255, 0, 255, 0.2)")
//	local buckets = indentglow.compute("    x", 4)
//	-- buckets[1][1] == {0, 4}
//	indentglow.log("loaded " .. indentglow.version)
//
// The Host collects registered languages and palette overrides so the
// application can apply them after all scripts have run.
package lua
