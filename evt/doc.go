// Package evt decodes Envertech EVT-800 micro-inverter wire frames.
//
// Frame layout, big-endian, no checksum verification:
// - start marker 68 00
// - fixed layout body
// - end marker 16
//
// Known frames:
// - telemetry, 86 bytes, two channels of electrical measurements
// - poll, 32 bytes, carries device serial number
//
// Client acknowledges any frame of at least 24 bytes with 16 byte ACK,
// built from serial number bytes of the triggering frame.
//
// Package is pure functions, no IO.
package evt
