// Package assets embeds the static files served by the HTTP layer.
package assets

import _ "embed"

// Script is the client script rendered forms load. On page load it adds the
// client token fields (oscbb_token, oscbb_timestamp, oscbb_fingerprint,
// oscbb_checks, oscbb_js_enabled) to every form that carries the session
// token field, and sets the oscbb_test cookie to the current time in ms.
//
//go:embed gatekeeper.js
var Script []byte
