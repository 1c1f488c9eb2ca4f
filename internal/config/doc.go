// Package config loads the kimaideck configuration document.
//
// # Overview
//
// The configuration names the Kimai API to talk to and, optionally, how the
// tile device is driven. It is read once at startup; the app package
// watches the file and reloads it when it changes.
//
// # Formats
//
// The file format follows the extension:
//
//   - .toml: parsed with go-toml
//   - anything else (.yaml, .yml, .json): parsed as YAML
//
// # Schema
//
//	remote:
//	  api:
//	    url: https://kimai.example.com/api/   # required, includes /api/
//	    user: susan                           # required, X-AUTH-USER
//	    token: secret                         # required, X-AUTH-TOKEN
//	device:
//	  driver: terminal      # terminal | evdev (default terminal)
//	  rows: 3               # default 3
//	  cols: 5               # default 5
//	  name: "Macro Pad"     # evdev input device name
//	  keycodes: [2, 3, 4]   # evdev key codes in tile order
//	display:
//	  timezone: Europe/Berlin
//	preview:
//	  listen: 127.0.0.1:8081
//	log:
//	  level: info           # debug | info | warn | error
//	  file: ~/kimaideck.log
//
// The older top-level "kimai.api" block is accepted in place of "remote.api".
//
// # Error Handling
//
// Unlike most settings files, a missing configuration is fatal: without API
// credentials the deck cannot show anything. Load returns errors for a
// missing or unreadable file, a parse failure ("parse config: ..."), and
// every Validate failure ("config: ...").
//
// # Path Expansion
//
// The config path and log.file accept "~" for the home directory and are
// turned into absolute paths.
package config
