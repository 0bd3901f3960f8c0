// Package tui provides the terminal dashboard for tunnelctl.
//
// The dashboard is a Bubble Tea program that shows one row per tunnel: a
// spinner while the tunnel's command is still starting, its public URL once it
// has been discovered, or a cross when the discovery timeout passed without a
// URL. An activity log below the rows shows the entries of the logging
// channel.
//
// # Data Flow
//
// The tunnel session reports progress through callbacks. A Bridge adapts them
// into messages on a buffered channel that the model listens to:
//
//	bridge := tui.NewBridge(len(specs))
//	// register bridge.URLCallback(name) per tunnel and bridge.Published as
//	// the session callback, then
//	p := tui.NewProgram(tui.Config{Port: port, Specs: specs, Updates: bridge.Updates()}, logChan)
//
// # Key Bindings
//
//   - y: copy the discovered URLs to the clipboard
//   - L: toggle the activity log
//   - q, ctrl+c: quit; the caller stops the session once the program returns
package tui
