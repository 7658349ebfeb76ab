// Package config loads indentglow settings.
//
// Settings are layered: built-in defaults, then the TOML file, then
// INDENTGLOW_* environment variables. A Watcher reloads the file when it
// changes on disk and announces the new settings on the event bus.
//
// Example file:
//
//	[editor]
//	tab_size = 2
//
//	[indent]
//	language = "rivet"
//	extensions = [".rv"]
//	debounce_ms = 50
//	palette = ["#ff69b4", "#ffa500", "#0064ff", "#00ff00", "#ffff00", "#ff0000", "#00ffff"]
//	opacity = 0.15
//
//	[theme]
//	background = "#1e1e1e"
//
//	[log]
//	level = "info"
//	file = "/tmp/indentglow.log"
//
//	[plugins]
//	scripts = ["~/.config/indentglow/init.lua"]
package config
