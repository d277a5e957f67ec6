// Package image1bit provides a 1-bit monochrome image format for e-paper panels.
//
// E-paper controllers (and the firmware buffers that feed them) store one pixel
// per bit, eight pixels per byte, in horizontal packing with the most
// significant bit holding the leftmost pixel.
//
// Memory layout example for a 10-pixel row:
//
//	Pixels: 0 1 2 3 4 5 6 7 | 8 9
//	Values: 1 0 1 1 0 0 0 1 | 1 1
//	Bytes:  0xB1            | 0xC0
//	        (the unused low bits of the last byte stay zero)
//
// A set bit is ink (On, rendered black), a cleared bit is paper (Off, rendered
// white).
//
// This package provides:
//
// - Bit: A color type representing one e-paper pixel
// - BitModel: A color model for converting standard Go colors to Bit
// - HorizontalMSB: An image.Image implementation with the packing above
//
// Example usage:
//
//	// Create a 296x128 image
//	img := image1bit.NewHorizontalMSB(image.Rect(0, 0, 296, 128))
//
//	// Ink a pixel
//	img.SetBit(10, 20, image1bit.On)
//
//	// Read it back
//	println(img.BitAt(10, 20)) // Output: true
//
//	// Use with standard Go image operations
//	draw.Draw(img, img.Bounds(), image.NewUniform(image1bit.On), image.Point{}, draw.Src)
package image1bit
