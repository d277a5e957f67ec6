// Package epdmock previews the display lambda of a monochrome e-paper panel
// without the panel.
//
// A display lambda is the routine firmware calls to redraw the panel: it gets
// a drawing handle ("it") and paints text, shapes and bitmaps from sensor
// states. epdmock runs such a routine against a software surface, lets the
// sensors it reads be edited live, and exports the routine as firmware code.
//
// # Drawing Surface
//
// Gfx is the drawing handle. Its coordinates are integer pixels with the
// origin at the top left. Colors are CSS color strings; ColorOn is ink and
// ColorOff is paper:
//
//	it := epdmock.NewGfx(296, 128)
//	it.Fill(epdmock.ColorOff)
//	it.Rectangle(0, 0, it.Width(), it.Height(), epdmock.ColorOn)
//	it.Printf(6, 6, font, epdmock.AlignLeft, "%.1f°C", temperature.State)
//
// # Sensors
//
// BinarySensor and NumericSensor hold mock states that render routines read
// and that the mock-sensor panel edits. TextSensor is read-only.
//
// # Sessions
//
// A UI session owns one surface, the registered sensors and one render
// routine. Run renders at once and then again 500ms after each render ends:
//
//	ui := epdmock.New(nil)
//	ui.RegisterSensor(battery)
//	ui.RegisterRenderLoop(epdmock.RenderFunc(func(it *epdmock.Gfx) error {
//		it.Clear()
//		it.Printf(0, 0, font, epdmock.AlignLeft, "%d%%", int(battery.State))
//		return nil
//	}))
//	err := ui.Run(ctx)
//
// Sensor edits made while the session runs go through UI.SetControl,
// UI.ToggleControl or UI.Submit, so that routines never observe a half-made
// edit.
//
// # Exporting Code
//
// UI.GetCode exports the routine as firmware code when it implements Coder.
// The lambda package builds routines that both run here and export
// themselves; SourceRoutine pairs a Go routine with its hand-written source.
//
// # Panels
//
// Panel simulates the panel itself: it implements the display.Drawer
// interface from periph.io, quantizes frames to 1 bit and forwards only the
// changed region of every update to a Sink, with a periodic full refresh:
//
//	panel, _ := epdmock.NewPanel(sink, &epdmock.PanelOpts{W: 296, H: 128})
//	ui := epdmock.New(&epdmock.Opts{Panel: panel})
//
// It can be used with any periph.io tool or library expecting a display.Drawer.
package epdmock
